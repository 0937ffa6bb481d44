package dto

import (
	"github.com/shopspring/decimal"
)

type TransactionItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid4"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"` // nil = snapshot from product
}

type CreateTransactionRequest struct {
	Type             string                   `json:"type" validate:"required,oneof=SALE PURCHASE"`
	CounterpartyName string                   `json:"counterparty_name" validate:"required,min=1,max=255"`
	Items            []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes            string                   `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateTransactionRequest replaces the draft's items and/or notes.
type UpdateTransactionRequest struct {
	CounterpartyName *string                  `json:"counterparty_name" validate:"omitempty,min=1,max=255"`
	Items            []TransactionItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	Notes            *string                  `json:"notes" validate:"omitempty,max=1000"`
}

// TransactionFilter narrows the transaction listing.
type TransactionFilter struct {
	Type     string // SALE | PURCHASE | ""
	Status   string // DRAFT | CONFIRMED | COMPLETED | CANCELED | ""
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
	Page     int
	Limit    int
}

type TransactionItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type TransactionResponse struct {
	ID               string                    `json:"id"`
	Code             string                    `json:"code"`
	Type             string                    `json:"type"`
	Status           string                    `json:"status"`
	CounterpartyName string                    `json:"counterparty_name"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	TaxAmount        decimal.Decimal           `json:"tax_amount"`
	TotalAmount      decimal.Decimal           `json:"total_amount"`
	Notes            string                    `json:"notes,omitempty"`
	CreatedBy        string                    `json:"created_by"`
	ConfirmedBy      *string                   `json:"confirmed_by,omitempty"`
	CompletedAt      *string                   `json:"completed_at,omitempty"`
	CreatedAt        string                    `json:"created_at"`
	Items            []TransactionItemResponse `json:"items"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
