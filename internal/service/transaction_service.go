package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/pricing"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error)
	Confirm(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error)
	Complete(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
}

type transactionService struct {
	repo        repository.TransactionRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	ledger      LedgerService
	dispatcher  *worker.Dispatcher
	emitter     *notify.Emitter
	cfg         *config.Config
}

func NewTransactionService(
	repo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	ledger LedgerService,
	dispatcher *worker.Dispatcher,
	emitter *notify.Emitter,
	cfg *config.Config,
) TransactionService {
	return &transactionService{
		repo:        repo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		ledger:      ledger,
		dispatcher:  dispatcher,
		emitter:     emitter,
		cfg:         cfg,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// canTransition encodes the one-directional lifecycle. COMPLETED is reached
// from DRAFT or CONFIRMED (the confirm step is optional), and cancellation is
// allowed until completion.
func canTransition(from, to model.TransactionStatus) bool {
	switch from {
	case model.StatusDraft:
		return to == model.StatusConfirmed || to == model.StatusCompleted || to == model.StatusCanceled
	case model.StatusConfirmed:
		return to == model.StatusCompleted || to == model.StatusCanceled
	}
	return false
}

func transitionErr(from, to model.TransactionStatus) error {
	return apierror.Conflict(fmt.Sprintf("cannot transition transaction from %s to %s", from, to))
}

// resolvedItem is an item with its product loaded and price snapshotted.
type resolvedItem struct {
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
	lineTotal decimal.Decimal
}

// resolveItems loads each product, snapshots the unit price (selling price for
// sales, cost price for purchases, unless the request overrides it) and
// computes the line totals.
func (s *transactionService) resolveItems(ctx context.Context, txType model.TransactionType, items []dto.TransactionItemRequest) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, 0, len(items))
	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product_id: " + item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apierror.NotFound("product " + item.ProductID)
		}
		if !p.Active {
			return nil, apierror.Validation(fmt.Sprintf("product %q is inactive", p.Name))
		}

		var price decimal.Decimal
		switch {
		case item.UnitPrice != nil:
			if item.UnitPrice.IsNegative() {
				return nil, apierror.Validation("unit_price must not be negative")
			}
			price = *item.UnitPrice
		case txType == model.TxPurchase:
			price = p.CostPrice
		default:
			price = p.SellingPrice
		}

		resolved = append(resolved, resolvedItem{
			product:   p,
			quantity:  item.Quantity,
			unitPrice: price,
			lineTotal: pricing.LineTotal(item.Quantity, price),
		})
	}
	return resolved, nil
}

func (s *transactionService) totals(resolved []resolvedItem) pricing.Totals {
	lines := make([]pricing.Line, len(resolved))
	for i, r := range resolved {
		lines[i] = pricing.Line{Quantity: r.quantity, UnitPrice: r.unitPrice}
	}
	return pricing.Calculate(lines, s.taxRate())
}

func (s *transactionService) taxRate() decimal.Decimal {
	rate, err := decimal.NewFromString(s.cfg.TaxRatePct)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	txType := model.TransactionType(req.Type)

	resolved, err := s.resolveItems(ctx, txType, req.Items)
	if err != nil {
		return nil, err
	}
	totals := s.totals(resolved)

	var t model.Transaction
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		codeNum, err := s.repo.NextCodeNumber(ctx, tx)
		if err != nil {
			return err
		}

		prefix := "SAL"
		if txType == model.TxPurchase {
			prefix = "PUR"
		}

		t = model.Transaction{
			Code:             fmt.Sprintf("%s-%d-%06d", prefix, time.Now().Year(), codeNum),
			Type:             txType,
			Status:           model.StatusDraft,
			CounterpartyName: req.CounterpartyName,
			Subtotal:         totals.Subtotal,
			TaxAmount:        totals.Tax,
			TotalAmount:      totals.Total,
			Notes:            req.Notes,
			CreatedByID:      userID,
		}
		for _, r := range resolved {
			t.Items = append(t.Items, model.TransactionItem{
				ProductID: r.product.ID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				LineTotal: r.lineTotal,
			})
		}
		return s.repo.Create(ctx, tx, &t)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitter.Emit(ctx, notify.KindTransaction, "created", map[string]interface{}{
		"id": t.ID.String(), "code": t.Code, "status": string(t.Status),
	})

	resp := transactionToResponse(&t)
	for i, r := range resolved {
		resp.Items[i].ProductName = r.product.Name
		resp.Items[i].ProductSKU = r.product.SKU
	}
	return resp, nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Drafts are the only mutable state. Replacing items re-snapshots prices and
// recomputes the totals.

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != model.StatusDraft {
		return nil, apierror.Conflict(fmt.Sprintf("only DRAFT transactions can be edited (current status: %s)", t.Status))
	}

	if req.CounterpartyName != nil {
		t.CounterpartyName = *req.CounterpartyName
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}

	if len(req.Items) > 0 {
		resolved, err := s.resolveItems(ctx, t.Type, req.Items)
		if err != nil {
			return nil, err
		}
		totals := s.totals(resolved)
		t.Subtotal = totals.Subtotal
		t.TaxAmount = totals.Tax
		t.TotalAmount = totals.Total

		items := make([]model.TransactionItem, 0, len(resolved))
		for _, r := range resolved {
			items = append(items, model.TransactionItem{
				TransactionID: t.ID,
				ProductID:     r.product.ID,
				Quantity:      r.quantity,
				UnitPrice:     r.unitPrice,
				LineTotal:     r.lineTotal,
			})
		}
		t.Items = nil
		if err := s.repo.ReplaceItems(ctx, t, items); err != nil {
			return nil, err
		}
	} else if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.KindTransaction, "updated", map[string]interface{}{
		"id": t.ID.String(), "code": t.Code,
	})

	// Re-read to pick up replaced items with product preloads
	return s.Get(ctx, id)
}

// ── Confirm ───────────────────────────────────────────────────────────────────

func (s *transactionService) Confirm(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(t.Status, model.StatusConfirmed) {
		return nil, transitionErr(t.Status, model.StatusConfirmed)
	}
	if len(t.Items) == 0 {
		return nil, apierror.Validation("cannot confirm a transaction with no items")
	}

	n, err := s.repo.UpdateStatusTx(s.repo.DB(), t.ID,
		[]model.TransactionStatus{model.StatusDraft},
		model.StatusConfirmed, map[string]interface{}{"confirmed_by_id": userID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apierror.Conflict("transaction " + t.Code + " was modified concurrently")
	}
	t.Status = model.StatusConfirmed
	t.ConfirmedByID = &userID

	s.emitter.Emit(ctx, notify.KindTransaction, "status_changed", map[string]interface{}{
		"id": t.ID.String(), "code": t.Code, "status": string(t.Status),
	})
	return transactionToResponse(t), nil
}

// ── Complete ──────────────────────────────────────────────────────────────────
// The only operation with stock effects. All item movements and the status
// flip commit atomically: one short line rolls back the whole completion.
// The flip itself is a conditional UPDATE, so a completion racing another
// completion (or a cancel) loses cleanly and rolls back its movements.

func (s *transactionService) Complete(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(t.Status, model.StatusCompleted) {
		return nil, transitionErr(t.Status, model.StatusCompleted)
	}
	if len(t.Items) == 0 {
		return nil, apierror.Validation("cannot complete a transaction with no items")
	}

	now := time.Now().UTC()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range t.Items {
			p := item.Product
			if p == nil {
				loaded, err := s.productRepo.FindByID(ctx, item.ProductID)
				if err != nil {
					return apierror.NotFound("product " + item.ProductID.String())
				}
				p = loaded
			}

			delta := item.Quantity
			mtype := model.MovementPurchase
			if t.Type == model.TxSale {
				delta = -item.Quantity
				mtype = model.MovementSale
			}

			ref := t.ID
			notes := fmt.Sprintf("%s %s", t.Type, t.Code)
			if _, err := s.ledger.ApplyMovementTx(ctx, tx, p, delta, mtype, notes, userID, &ref); err != nil {
				return err
			}
		}

		n, err := s.repo.UpdateStatusTx(orDB(tx, s.repo.DB()), t.ID,
			[]model.TransactionStatus{model.StatusDraft, model.StatusConfirmed},
			model.StatusCompleted, map[string]interface{}{"completed_at": now})
		if err != nil {
			return err
		}
		if n == 0 {
			return apierror.Conflict("transaction " + t.Code + " was modified concurrently")
		}
		t.Status = model.StatusCompleted
		t.CompletedAt = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitter.Emit(ctx, notify.KindTransaction, "status_changed", map[string]interface{}{
		"id": t.ID.String(), "code": t.Code, "status": string(t.Status),
	})
	s.emitter.Emit(ctx, notify.KindDashboard, "updated", nil)

	// Async post-completion work — best-effort, never fails the request
	if s.dispatcher != nil {
		if t.Type == model.TxSale {
			_ = s.dispatcher.EnqueueReceipt(ctx, map[string]interface{}{
				"transaction_id": t.ID.String(),
			})
		}
		s.checkLowStock(ctx, t)
	}

	return transactionToResponse(t), nil
}

// checkLowStock enqueues an alert when completing the transaction left any
// of its products at or below the minimum level.
func (s *transactionService) checkLowStock(ctx context.Context, t *model.Transaction) {
	if t.Type != model.TxSale {
		return
	}
	low := make([]map[string]interface{}, 0)
	for _, item := range t.Items {
		if item.Product == nil {
			continue
		}
		stock, err := s.stockRepo.FindByProduct(ctx, item.ProductID)
		if err != nil {
			continue
		}
		if stock.Quantity <= item.Product.MinStockLevel {
			low = append(low, map[string]interface{}{
				"product_id": item.ProductID.String(),
				"name":       item.Product.Name,
				"quantity":   stock.Quantity,
				"min_level":  item.Product.MinStockLevel,
			})
		}
	}
	if len(low) > 0 {
		_ = s.dispatcher.EnqueueLowStockAlert(ctx, map[string]interface{}{"products": low})
	}
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Canceling never touches stock: drafts and confirmed transactions have no
// stock effects to undo.

func (s *transactionService) Cancel(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(t.Status, model.StatusCanceled) {
		return nil, transitionErr(t.Status, model.StatusCanceled)
	}

	n, err := s.repo.UpdateStatusTx(s.repo.DB(), t.ID,
		[]model.TransactionStatus{model.StatusDraft, model.StatusConfirmed},
		model.StatusCanceled, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apierror.Conflict("transaction " + t.Code + " was modified concurrently")
	}
	t.Status = model.StatusCanceled

	s.emitter.Emit(ctx, notify.KindTransaction, "status_changed", map[string]interface{}{
		"id": t.ID.String(), "code": t.Code, "status": string(t.Status),
	})
	return transactionToResponse(t), nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != model.StatusDraft {
		return apierror.Conflict(fmt.Sprintf("only DRAFT transactions can be deleted (current status: %s)", t.Status))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, notify.KindTransaction, "deleted", map[string]interface{}{
		"id": id.String(), "code": t.Code,
	})
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return transactionToResponse(t), nil
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	txs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, *transactionToResponse(&txs[i]))
	}
	return &dto.TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}, nil
}

func (s *transactionService) find(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("transaction")
		}
		return nil, err
	}
	return t, nil
}

// orDB returns tx when inside a real transaction, otherwise the fallback
// handle (nil in unit test mode, where the stub repo ignores it).
func orDB(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func transactionToResponse(t *model.Transaction) *dto.TransactionResponse {
	items := make([]dto.TransactionItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		r := dto.TransactionItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
		if item.Product != nil {
			r.ProductName = item.Product.Name
			r.ProductSKU = item.Product.SKU
		}
		items = append(items, r)
	}

	resp := &dto.TransactionResponse{
		ID:               t.ID.String(),
		Code:             t.Code,
		Type:             string(t.Type),
		Status:           string(t.Status),
		CounterpartyName: t.CounterpartyName,
		Subtotal:         t.Subtotal,
		TaxAmount:        t.TaxAmount,
		TotalAmount:      t.TotalAmount,
		Notes:            t.Notes,
		CreatedBy:        t.CreatedByID.String(),
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
		Items:            items,
	}
	if t.ConfirmedByID != nil {
		v := t.ConfirmedByID.String()
		resp.ConfirmedBy = &v
	}
	if t.CompletedAt != nil {
		v := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
