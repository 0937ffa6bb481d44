package dto

import "time"

// AdjustStockRequest is the manual stock adjustment input.
// "set" computes the delta needed to reach Quantity; "add"/"remove" apply
// Quantity as a positive/negative delta.
type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Type      string `json:"type" validate:"required,oneof=add remove set"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Reason    string `json:"reason" validate:"omitempty,oneof=adjustment correction initial"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
}

type AdjustStockResponse struct {
	ProductID  string `json:"product_id"`
	NewBalance int    `json:"new_balance"`
}

// MovementFilter narrows the movement log listing.
type MovementFilter struct {
	ProductID string
	Type      string
	Page      int
	Limit     int
}

type MovementResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	Type         string    `json:"type"`
	Delta        int       `json:"delta"`
	BalanceAfter int       `json:"balance_after"`
	Notes        string    `json:"notes,omitempty"`
	PerformedBy  string    `json:"performed_by"`
	ReferenceID  *string   `json:"reference_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

type LowStockItem struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}
