package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxSale     TransactionType = "SALE"
	TxPurchase TransactionType = "PURCHASE"
)

type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "DRAFT"
	StatusConfirmed TransactionStatus = "CONFIRMED"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCanceled  TransactionStatus = "CANCELED"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Transaction is a sale or purchase moving through
// DRAFT → CONFIRMED → COMPLETED (or → CANCELED from a non-terminal state).
// Stock is touched only on the COMPLETED transition.
// Invariant: TotalAmount == Subtotal + TaxAmount.
type Transaction struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code             string            `gorm:"uniqueIndex;not null" json:"code"` // e.g. SAL-2026-000042
	Type             TransactionType   `gorm:"type:varchar(10);not null;index" json:"type"`
	Status           TransactionStatus `gorm:"type:varchar(10);not null;index;default:'DRAFT'" json:"status"`
	CounterpartyName string            `gorm:"not null" json:"counterparty_name"` // customer or supplier
	Subtotal         decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount        decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	TotalAmount      decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Notes            string            `json:"notes,omitempty"`
	CreatedByID      uuid.UUID         `gorm:"type:uuid;not null" json:"created_by_id"`
	ConfirmedByID    *uuid.UUID        `gorm:"type:uuid" json:"confirmed_by_id,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
}

// TransactionItem is one line of its parent transaction. UnitPrice is
// snapshotted at creation and never re-read from the product, so later price
// edits cannot change an agreed total.
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
