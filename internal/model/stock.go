package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock holds the current on-hand quantity for one product (one-to-one).
// Quantity is mutated exclusively through the ledger's apply-movement path so
// that quantity == sum(all movement deltas) at all times; the DB additionally
// carries a CHECK (quantity >= 0) constraint as a last line of defense.
type Stock struct {
	ProductID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"product_id"`
	Quantity       int        `gorm:"not null;default:0" json:"quantity"`
	LastMovementAt *time.Time `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides GORM's default pluralization ("stocks" reads wrong).
func (Stock) TableName() string { return "stock" }
