package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is one live refresh token. The row stores only a SHA-256 digest of
// the token, never the token itself. Rotation on refresh deletes the old row
// and inserts a new one, so a rotated (or logged-out) token can never be
// redeemed again.
type Session struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenDigest string    `gorm:"not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
