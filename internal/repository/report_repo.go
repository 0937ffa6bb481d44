package repository

import (
	"context"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregation rows scanned straight from raw SQL. decimal.Decimal implements
// sql.Scanner so numeric columns land without float round-trips.

type DailyAmountRow struct {
	Day    time.Time
	Count  int64
	Amount decimal.Decimal
}

type TopProductRow struct {
	ProductID string
	Name      string
	Quantity  int64
	Amount    decimal.Decimal
}

type CategoryValuationRow struct {
	Category  string
	Products  int64
	Quantity  int64
	Valuation decimal.Decimal
}

type DailyFlowRow struct {
	Day      time.Time
	Inbound  int64
	Outbound int64
}

type DailyProfitRow struct {
	Day         time.Time
	Revenue     decimal.Decimal
	CostOfGoods decimal.Decimal
}

type ReportRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	InventoryValuation(ctx context.Context) (decimal.Decimal, error)
	TodaySales(ctx context.Context) (int64, decimal.Decimal, error)
	CountByStatus(ctx context.Context, status model.TransactionStatus) (int64, error)

	DailyTotals(ctx context.Context, txType model.TransactionType, from, to string) ([]DailyAmountRow, error)
	TopProducts(ctx context.Context, txType model.TransactionType, from, to string, limit int) ([]TopProductRow, error)
	RangeTotals(ctx context.Context, txType model.TransactionType, from, to string) (int64, decimal.Decimal, error)

	CategoryValuations(ctx context.Context) ([]CategoryValuationRow, error)
	DailyStockFlow(ctx context.Context, from, to string) ([]DailyFlowRow, error)
	DailyProfit(ctx context.Context, from, to string) ([]DailyProfitRow, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = true").Count(&n).Error
	return n, err
}

func (r *reportRepo) InventoryValuation(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(s.quantity * p.cost_price), 0) AS total
		FROM stock s
		JOIN products p ON p.id = s.product_id
		WHERE p.active = true`).Scan(&row).Error
	return row.Total, err
}

func (r *reportRepo) TodaySales(ctx context.Context) (int64, decimal.Decimal, error) {
	var row struct {
		Count  int64
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM transactions
		WHERE type = ? AND status = ? AND DATE(completed_at) = CURRENT_DATE`,
		model.TxSale, model.StatusCompleted).Scan(&row).Error
	return row.Count, row.Amount, err
}

func (r *reportRepo) CountByStatus(ctx context.Context, status model.TransactionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *reportRepo) DailyTotals(ctx context.Context, txType model.TransactionType, from, to string) ([]DailyAmountRow, error) {
	var rows []DailyAmountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(completed_at) AS day, COUNT(*) AS count, SUM(total_amount) AS amount
		FROM transactions
		WHERE type = ? AND status = ?
		  AND DATE(completed_at) BETWEEN ? AND ?
		GROUP BY DATE(completed_at)
		ORDER BY day ASC`,
		txType, model.StatusCompleted, from, to).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, txType model.TransactionType, from, to string, limit int) ([]TopProductRow, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var rows []TopProductRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT ti.product_id, p.name, SUM(ti.quantity) AS quantity, SUM(ti.line_total) AS amount
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN products p ON p.id = ti.product_id
		WHERE t.type = ? AND t.status = ?
		  AND DATE(t.completed_at) BETWEEN ? AND ?
		GROUP BY ti.product_id, p.name
		ORDER BY quantity DESC
		LIMIT ?`,
		txType, model.StatusCompleted, from, to, limit).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) RangeTotals(ctx context.Context, txType model.TransactionType, from, to string) (int64, decimal.Decimal, error) {
	var row struct {
		Count  int64
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM transactions
		WHERE type = ? AND status = ?
		  AND DATE(completed_at) BETWEEN ? AND ?`,
		txType, model.StatusCompleted, from, to).Scan(&row).Error
	return row.Count, row.Amount, err
}

func (r *reportRepo) CategoryValuations(ctx context.Context) ([]CategoryValuationRow, error) {
	var rows []CategoryValuationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.category,
		       COUNT(*) AS products,
		       COALESCE(SUM(s.quantity), 0) AS quantity,
		       COALESCE(SUM(s.quantity * p.cost_price), 0) AS valuation
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.active = true
		GROUP BY p.category
		ORDER BY valuation DESC`).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) DailyStockFlow(ctx context.Context, from, to string) ([]DailyFlowRow, error) {
	var rows []DailyFlowRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at) AS day,
		       COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) AS inbound,
		       COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) AS outbound
		FROM stock_movements
		WHERE DATE(created_at) BETWEEN ? AND ?
		GROUP BY DATE(created_at)
		ORDER BY day ASC`, from, to).Scan(&rows).Error
	return rows, err
}

// DailyProfit estimates cost of goods from the product's current cost price.
// Good enough for a gross margin view; a FIFO costing layer is out of scope.
func (r *reportRepo) DailyProfit(ctx context.Context, from, to string) ([]DailyProfitRow, error) {
	var rows []DailyProfitRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(t.completed_at) AS day,
		       SUM(ti.line_total) AS revenue,
		       SUM(ti.quantity * p.cost_price) AS cost_of_goods
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN products p ON p.id = ti.product_id
		WHERE t.type = ? AND t.status = ?
		  AND DATE(t.completed_at) BETWEEN ? AND ?
		GROUP BY DATE(t.completed_at)
		ORDER BY day ASC`,
		model.TxSale, model.StatusCompleted, from, to).Scan(&rows).Error
	return rows, err
}
