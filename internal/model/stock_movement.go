package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a single stock change.
type MovementType string

const (
	MovementInitial    MovementType = "initial"    // opening balance load
	MovementSale       MovementType = "sale"       // deduction from a completed sale
	MovementPurchase   MovementType = "purchase"   // receipt from a completed purchase
	MovementAdjustment MovementType = "adjustment" // manual adjustment
	MovementCorrection MovementType = "correction" // count correction
)

// StockMovement is the append-only audit trail of every stock change.
// Rows are immutable once created — never updated or deleted.
type StockMovement struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Type         MovementType `gorm:"type:varchar(20);not null" json:"type"`
	Delta        int          `gorm:"not null" json:"delta"` // positive = in, negative = out
	BalanceAfter int          `gorm:"not null" json:"balance_after"`
	Notes        string       `json:"notes,omitempty"`
	PerformedBy  uuid.UUID    `gorm:"type:uuid;not null" json:"performed_by"`
	ReferenceID  *uuid.UUID   `gorm:"type:uuid" json:"reference_id,omitempty"` // transaction id if applicable
	CreatedAt    time.Time    `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
