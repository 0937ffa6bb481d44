package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Products referenced by transactions are never
// hard-deleted — Active=false takes them out of circulation instead.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SKU           string    `gorm:"uniqueIndex;not null" json:"sku"`
	Name          string    `gorm:"index;not null" json:"name"`
	Category      string    `gorm:"not null" json:"category"`
	Unit          string    `gorm:"not null;default:'unit'" json:"unit"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	MinStockLevel int             `gorm:"not null;default:5" json:"min_stock_level"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Stock *Stock `gorm:"foreignKey:ProductID" json:"stock,omitempty"`
}
