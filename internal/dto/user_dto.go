package dto

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=OWNER ADMIN STAFF WAREHOUSE"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=OWNER ADMIN STAFF WAREHOUSE"`
	Password string `json:"password" validate:"omitempty,min=8"`
}
