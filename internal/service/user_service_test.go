package service

import (
	"context"
	"testing"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func buildUserSvc() (UserService, *stubUserRepo, *stubSessionRepo) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	return NewUserService(users, sessions, nil), users, sessions
}

func seedUser(users *stubUserRepo, email, role string) *model.User {
	u := &model.User{
		ID:       uuid.New(),
		Email:    email,
		FullName: "Seeded User",
		Role:     role,
		Active:   true,
	}
	users.users[u.ID] = u
	return u
}

func TestUserCreate_HashesPassword(t *testing.T) {
	svc, users, _ := buildUserSvc()

	resp, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "new@garage.local",
		FullName: "New Hire",
		Password: "longenough",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, resp.Role)
	assert.True(t, resp.Active)

	stored, err := users.FindByEmail(context.Background(), "new@garage.local")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")))
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc, users, _ := buildUserSvc()
	seedUser(users, "taken@garage.local", model.RoleStaff)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "taken@garage.local",
		FullName: "Impostor",
		Password: "longenough",
		Role:     model.RoleStaff,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.From(err).Kind)
}

func TestUserUpdate_LastOwnerCannotBeDemoted(t *testing.T) {
	svc, users, _ := buildUserSvc()
	owner := seedUser(users, "owner@garage.local", model.RoleOwner)

	_, err := svc.Update(context.Background(), owner.ID, dto.UpdateUserRequest{Role: model.RoleStaff})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.From(err).Kind)
	assert.Equal(t, model.RoleOwner, users.users[owner.ID].Role)
}

func TestUserUpdate_OwnerDemotionAllowedWithSecondOwner(t *testing.T) {
	svc, users, _ := buildUserSvc()
	owner := seedUser(users, "owner@garage.local", model.RoleOwner)
	seedUser(users, "partner@garage.local", model.RoleOwner)

	resp, err := svc.Update(context.Background(), owner.ID, dto.UpdateUserRequest{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Role)
}

func TestUserUpdate_PasswordChangeRevokesSessions(t *testing.T) {
	svc, users, sessions := buildUserSvc()
	u := seedUser(users, "mech@garage.local", model.RoleStaff)
	sessions.sessions[uuid.New()] = &model.Session{
		ID:        uuid.New(),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := svc.Update(context.Background(), u.ID, dto.UpdateUserRequest{Password: "brandnewpass"})
	require.NoError(t, err)
	assert.Empty(t, sessions.sessions, "open sessions must die with the old password")
}

func TestUserDeactivate_LastOwnerProtected(t *testing.T) {
	svc, users, _ := buildUserSvc()
	owner := seedUser(users, "owner@garage.local", model.RoleOwner)

	err := svc.Deactivate(context.Background(), owner.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.From(err).Kind)
	assert.True(t, users.users[owner.ID].Active)
}

func TestUserDeactivate_RevokesSessions(t *testing.T) {
	svc, users, sessions := buildUserSvc()
	seedUser(users, "owner@garage.local", model.RoleOwner)
	staff := seedUser(users, "mech@garage.local", model.RoleStaff)
	sid := uuid.New()
	sessions.sessions[sid] = &model.Session{ID: sid, UserID: staff.ID, ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, svc.Deactivate(context.Background(), staff.ID))
	assert.False(t, users.users[staff.ID].Active)
	assert.Empty(t, sessions.sessions)
}

func TestUserUpdate_NotFound(t *testing.T) {
	svc, _, _ := buildUserSvc()

	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateUserRequest{FullName: "Nobody"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.From(err).Kind)
}
