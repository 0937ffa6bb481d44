package service

import (
	"context"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"
)

const dateLayout = "2006-01-02"

type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	Sales(ctx context.Context, rng dto.ReportRange) (*dto.TransactionReport, error)
	Purchases(ctx context.Context, rng dto.ReportRange) (*dto.TransactionReport, error)
	Inventory(ctx context.Context, rng dto.ReportRange) (*dto.InventoryReport, error)
	Profit(ctx context.Context, rng dto.ReportRange) (*dto.ProfitReport, error)
	Activity(ctx context.Context, limit int) (*dto.ActivityReport, error)
}

type reportService struct {
	repo         repository.ReportRepository
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	txRepo       repository.TransactionRepository
}

func NewReportService(repo repository.ReportRepository, stockRepo repository.StockRepository, movementRepo repository.MovementRepository, txRepo repository.TransactionRepository) ReportService {
	return &reportService{repo: repo, stockRepo: stockRepo, movementRepo: movementRepo, txRepo: txRepo}
}

// normalizeRange defaults to the trailing 30 days.
func normalizeRange(rng dto.ReportRange) dto.ReportRange {
	now := time.Now()
	if rng.DateTo == "" {
		rng.DateTo = now.Format(dateLayout)
	}
	if rng.DateFrom == "" {
		rng.DateFrom = now.AddDate(0, 0, -30).Format(dateLayout)
	}
	if rng.Limit < 1 || rng.Limit > 50 {
		rng.Limit = 10
	}
	return rng
}

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	stats := &dto.DashboardStats{}

	var err error
	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if stats.InventoryValuation, err = s.repo.InventoryValuation(ctx); err != nil {
		return nil, err
	}
	if stats.TodaySalesCount, stats.TodaySalesTotal, err = s.repo.TodaySales(ctx); err != nil {
		return nil, err
	}
	if stats.DraftCount, err = s.repo.CountByStatus(ctx, model.StatusDraft); err != nil {
		return nil, err
	}
	if stats.ConfirmedCount, err = s.repo.CountByStatus(ctx, model.StatusConfirmed); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.stockRepo.CountLowStock(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *reportService) Sales(ctx context.Context, rng dto.ReportRange) (*dto.TransactionReport, error) {
	return s.transactionReport(ctx, model.TxSale, rng)
}

func (s *reportService) Purchases(ctx context.Context, rng dto.ReportRange) (*dto.TransactionReport, error) {
	return s.transactionReport(ctx, model.TxPurchase, rng)
}

func (s *reportService) transactionReport(ctx context.Context, txType model.TransactionType, rng dto.ReportRange) (*dto.TransactionReport, error) {
	rng = normalizeRange(rng)

	count, amount, err := s.repo.RangeTotals(ctx, txType, rng.DateFrom, rng.DateTo)
	if err != nil {
		return nil, err
	}
	dailyRows, err := s.repo.DailyTotals(ctx, txType, rng.DateFrom, rng.DateTo)
	if err != nil {
		return nil, err
	}
	topRows, err := s.repo.TopProducts(ctx, txType, rng.DateFrom, rng.DateTo, rng.Limit)
	if err != nil {
		return nil, err
	}

	report := &dto.TransactionReport{
		TotalCount:  count,
		TotalAmount: amount,
		Daily:       make([]dto.DailyAmount, 0, len(dailyRows)),
		TopProducts: make([]dto.TopProduct, 0, len(topRows)),
	}
	for _, r := range dailyRows {
		report.Daily = append(report.Daily, dto.DailyAmount{
			Date:   r.Day.Format(dateLayout),
			Count:  r.Count,
			Amount: r.Amount,
		})
	}
	for _, r := range topRows {
		report.TopProducts = append(report.TopProducts, dto.TopProduct{
			ProductID: r.ProductID,
			Name:      r.Name,
			Quantity:  r.Quantity,
			Amount:    r.Amount,
		})
	}
	return report, nil
}

func (s *reportService) Inventory(ctx context.Context, rng dto.ReportRange) (*dto.InventoryReport, error) {
	rng = normalizeRange(rng)

	total, err := s.repo.InventoryValuation(ctx)
	if err != nil {
		return nil, err
	}
	catRows, err := s.repo.CategoryValuations(ctx)
	if err != nil {
		return nil, err
	}
	flowRows, err := s.repo.DailyStockFlow(ctx, rng.DateFrom, rng.DateTo)
	if err != nil {
		return nil, err
	}

	report := &dto.InventoryReport{
		TotalValuation: total,
		Categories:     make([]dto.CategoryValuation, 0, len(catRows)),
		DailyFlow:      make([]dto.DailyFlow, 0, len(flowRows)),
	}
	for _, r := range catRows {
		report.Categories = append(report.Categories, dto.CategoryValuation{
			Category:  r.Category,
			Products:  r.Products,
			Quantity:  r.Quantity,
			Valuation: r.Valuation,
		})
	}
	for _, r := range flowRows {
		report.DailyFlow = append(report.DailyFlow, dto.DailyFlow{
			Date:     r.Day.Format(dateLayout),
			Inbound:  r.Inbound,
			Outbound: r.Outbound,
		})
	}
	return report, nil
}

func (s *reportService) Profit(ctx context.Context, rng dto.ReportRange) (*dto.ProfitReport, error) {
	rng = normalizeRange(rng)

	rows, err := s.repo.DailyProfit(ctx, rng.DateFrom, rng.DateTo)
	if err != nil {
		return nil, err
	}

	report := &dto.ProfitReport{Daily: make([]dto.DailyProfit, 0, len(rows))}
	for _, r := range rows {
		gross := r.Revenue.Sub(r.CostOfGoods)
		report.Revenue = report.Revenue.Add(r.Revenue)
		report.CostOfGoods = report.CostOfGoods.Add(r.CostOfGoods)
		report.GrossProfit = report.GrossProfit.Add(gross)
		report.Daily = append(report.Daily, dto.DailyProfit{
			Date:        r.Day.Format(dateLayout),
			Revenue:     r.Revenue,
			CostOfGoods: r.CostOfGoods,
			GrossProfit: gross,
		})
	}
	return report, nil
}

func (s *reportService) Activity(ctx context.Context, limit int) (*dto.ActivityReport, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	movements, err := s.movementRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	txs, err := s.txRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &dto.ActivityReport{
		Movements:    make([]dto.MovementResponse, 0, len(movements)),
		Transactions: make([]dto.TransactionResponse, 0, len(txs)),
	}
	for i := range movements {
		report.Movements = append(report.Movements, movementToResponse(&movements[i]))
	}
	for i := range txs {
		report.Transactions = append(report.Transactions, *transactionToResponse(&txs[i]))
	}
	return report, nil
}
