package dto

import (
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=50"`
	Name          string          `json:"name" validate:"required,min=1,max=255"`
	Category      string          `json:"category" validate:"required,min=1,max=100"`
	Unit          string          `json:"unit" validate:"omitempty,max=20"`
	CostPrice     decimal.Decimal `json:"cost_price" validate:"min=0"`
	SellingPrice  decimal.Decimal `json:"selling_price" validate:"min=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Category      *string          `json:"category" validate:"omitempty,min=1,max=100"`
	Unit          *string          `json:"unit" validate:"omitempty,max=20"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,min=0"`
}

// ProductFilter narrows the catalog listing.
type ProductFilter struct {
	Active   string // "true" (default) | "false" | "all"
	Name     string
	Category string
	Page     int
	Limit    int
}

type PriceLookupResponse struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Unit         string          `json:"unit"`
}
