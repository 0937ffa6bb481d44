package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values. The authz package maps roles to permitted actions.
const (
	RoleOwner     = "OWNER"
	RoleAdmin     = "ADMIN"
	RoleStaff     = "STAFF"
	RoleWarehouse = "WAREHOUSE"
)

// User stores system users with role-based access.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
