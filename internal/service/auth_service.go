package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues short-lived access tokens and rotating refresh tokens.
// Each refresh token maps to one Session row holding only a SHA-256 digest;
// a successful refresh deletes the old session and creates a new one, so a
// stolen token stops working the moment the legitimate client refreshes.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         *config.Config
	now         func() time.Time // injectable clock for expiry tests
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, sessionRepo: sessionRepo, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Burn a bcrypt comparison so a missing account costs the same as a
		// wrong password
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"), []byte(req.Password))
		return nil, apierror.Auth("invalid credentials")
	}
	if !user.Active {
		return nil, apierror.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Auth("invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("auth: update last login")
	}
	user.LastLoginAt = &now

	// Lazy cleanup: each login sweeps sessions already past their expiry
	if n, err := s.sessionRepo.DeleteExpired(ctx, now); err == nil && n > 0 {
		log.Debug().Int64("deleted", n).Msg("auth: expired sessions swept")
	}

	return &dto.LoginResponse{User: userToResponse(user), Tokens: *pair}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	sessionID, userID, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		// Session already rotated or revoked — the presented token is dead
		return nil, apierror.Auth("refresh token is no longer valid")
	}
	if session.TokenDigest != digest(refreshToken) || session.UserID != userID {
		return nil, apierror.Auth("refresh token is no longer valid")
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, apierror.Auth("refresh token expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil || !user.Active {
		return nil, apierror.Auth("account not found or inactive")
	}

	// Rotate: the old session dies before the new pair is born
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{User: userToResponse(user), Tokens: *pair}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	sessionID, _, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		// Already unusable — logout is idempotent
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// issueTokens builds an access/refresh pair and persists the refresh session.
func (s *authService) issueTokens(ctx context.Context, user *model.User) (*dto.TokenPair, error) {
	now := s.now()
	accessTTL := time.Duration(s.cfg.AccessTokenMinutes) * time.Minute
	refreshTTL := time.Duration(s.cfg.RefreshTokenHours) * time.Hour

	accessClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(accessTTL).Unix(),
		"iat":     now.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	refreshClaims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"user_id":    user.ID.String(),
		"exp":        now.Add(refreshTTL).Unix(),
		"iat":        now.Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:          sessionID,
		UserID:      user.ID,
		TokenDigest: digest(refreshToken),
		ExpiresAt:   now.Add(refreshTTL).UTC(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.AccessTokenMinutes * 60,
	}, nil
}

func (s *authService) parseRefreshToken(raw string) (sessionID, userID uuid.UUID, err error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return uuid.Nil, uuid.Nil, apierror.Auth("invalid or expired refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, apierror.Auth("malformed refresh token")
	}
	sidStr, _ := claims["session_id"].(string)
	uidStr, _ := claims["user_id"].(string)
	sid, err := uuid.Parse(sidStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, apierror.Auth("malformed refresh token")
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, apierror.Auth("malformed refresh token")
	}
	return sid, uid, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}
