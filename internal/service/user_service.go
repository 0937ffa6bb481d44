package service

import (
	"context"
	"errors"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo        repository.UserRepository
	sessionRepo repository.SessionRepository
	emitter     *notify.Emitter
}

func NewUserService(repo repository.UserRepository, sessionRepo repository.SessionRepository, emitter *notify.Emitter) UserService {
	return &userService{repo: repo, sessionRepo: sessionRepo, emitter: emitter}
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil && existing.ID != uuid.Nil {
		return nil, apierror.Conflict("a user with that email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.KindUser, "created", map[string]interface{}{"id": user.ID.String()})
	resp := userToResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" && req.Role != user.Role {
		// Demoting the last owner would lock everyone out of user management
		if user.Role == model.RoleOwner {
			if err := s.ensureNotLastOwner(ctx); err != nil {
				return nil, err
			}
		}
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		// Password change kills every open session for the account
		if err := s.sessionRepo.DeleteByUser(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.KindUser, "updated", map[string]interface{}{"id": id.String()})
	resp := userToResponse(user)
	return &resp, nil
}

func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == model.RoleOwner {
		if err := s.ensureNotLastOwner(ctx); err != nil {
			return err
		}
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByUser(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, notify.KindUser, "deleted", map[string]interface{}{"id": id.String()})
	return nil
}

func (s *userService) ensureNotLastOwner(ctx context.Context) error {
	n, err := s.repo.CountByRole(ctx, model.RoleOwner)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apierror.Conflict("cannot remove the last active owner")
	}
	return nil
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}
