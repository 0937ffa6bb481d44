package dto

import (
	"github.com/shopspring/decimal"
)

// DashboardStats is the overview block for the landing screen.
type DashboardStats struct {
	TotalProducts      int64           `json:"total_products"`
	LowStockCount      int64           `json:"low_stock_count"`
	InventoryValuation decimal.Decimal `json:"inventory_valuation"`
	TodaySalesTotal    decimal.Decimal `json:"today_sales_total"`
	TodaySalesCount    int64           `json:"today_sales_count"`
	DraftCount         int64           `json:"draft_count"`
	ConfirmedCount     int64           `json:"confirmed_count"`
}

// ReportRange is the shared date-range + limit query for reports.
type ReportRange struct {
	DateFrom string // YYYY-MM-DD, default 30 days ago
	DateTo   string // YYYY-MM-DD, default today
	Limit    int
}

type DailyAmount struct {
	Date   string          `json:"date"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransactionReport serves both the sales and the purchases report.
type TransactionReport struct {
	TotalCount  int64           `json:"total_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Daily       []DailyAmount   `json:"daily"`
	TopProducts []TopProduct    `json:"top_products"`
}

type CategoryValuation struct {
	Category  string          `json:"category"`
	Products  int64           `json:"products"`
	Quantity  int64           `json:"quantity"`
	Valuation decimal.Decimal `json:"valuation"`
}

type DailyFlow struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

type InventoryReport struct {
	TotalValuation decimal.Decimal     `json:"total_valuation"`
	Categories     []CategoryValuation `json:"categories"`
	DailyFlow      []DailyFlow         `json:"daily_flow"`
}

type ProfitReport struct {
	Revenue     decimal.Decimal `json:"revenue"`
	CostOfGoods decimal.Decimal `json:"cost_of_goods"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Daily       []DailyProfit   `json:"daily"`
}

type DailyProfit struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	CostOfGoods decimal.Decimal `json:"cost_of_goods"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
}

type ActivityReport struct {
	Movements    []MovementResponse    `json:"movements"`
	Transactions []TransactionResponse `json:"transactions"`
}
