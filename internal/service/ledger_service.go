package service

import (
	"context"
	"errors"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService owns every stock balance mutation. A balance never changes
// without a movement row being written in the same transaction, so
// stock.quantity always equals the sum of the product's movement deltas.
type LedgerService interface {
	// ApplyMovementTx locks the product's balance row, applies delta, and
	// appends the movement — all inside the caller's transaction. Returns the
	// new balance. A delta that would take the balance below zero fails with
	// an insufficient-stock error and writes nothing.
	ApplyMovementTx(ctx context.Context, tx *gorm.DB, p *model.Product, delta int, mtype model.MovementType, notes string, performedBy uuid.UUID, referenceID *uuid.UUID) (int, error)

	Adjust(ctx context.Context, performedBy uuid.UUID, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockItem, error)
	StockOf(ctx context.Context, productID uuid.UUID) (*model.Stock, error)
}

type ledgerService struct {
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	productRepo  repository.ProductRepository
	emitter      *notify.Emitter
}

func NewLedgerService(
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	emitter *notify.Emitter,
) LedgerService {
	return &ledgerService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		productRepo:  productRepo,
		emitter:      emitter,
	}
}

func (s *ledgerService) ApplyMovementTx(ctx context.Context, tx *gorm.DB, p *model.Product, delta int, mtype model.MovementType, notes string, performedBy uuid.UUID, referenceID *uuid.UUID) (int, error) {
	stock, err := s.stockRepo.FindByProductTx(tx, p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierror.NotFound("stock record for product " + p.SKU)
		}
		return 0, err
	}

	newBalance := stock.Quantity + delta
	if newBalance < 0 {
		return 0, apierror.InsufficientStock(p.Name, -newBalance)
	}

	now := time.Now().UTC()
	if err := s.stockRepo.UpdateQuantityTx(tx, p.ID, newBalance, now); err != nil {
		return 0, err
	}

	mov := &model.StockMovement{
		ProductID:    p.ID,
		Type:         mtype,
		Delta:        delta,
		BalanceAfter: newBalance,
		Notes:        notes,
		PerformedBy:  performedBy,
		ReferenceID:  referenceID,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (s *ledgerService) Adjust(ctx context.Context, performedBy uuid.UUID, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("invalid product_id")
	}
	p, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, apierror.NotFound("product")
	}

	mtype := model.MovementAdjustment
	switch req.Reason {
	case "correction":
		mtype = model.MovementCorrection
	case "initial":
		mtype = model.MovementInitial
	}

	var newBalance int
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		delta := req.Quantity
		switch req.Type {
		case "remove":
			delta = -req.Quantity
		case "set":
			stock, err := s.stockRepo.FindByProductTx(tx, pid)
			if err != nil {
				return err
			}
			delta = req.Quantity - stock.Quantity
			if delta == 0 {
				// Already at the target: nothing to record
				newBalance = stock.Quantity
				return nil
			}
		}

		newBalance, err = s.ApplyMovementTx(ctx, tx, p, delta, mtype, req.Notes, performedBy, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitter.Emit(ctx, notify.KindInventory, "adjusted", map[string]interface{}{
		"product_id": pid.String(),
		"balance":    newBalance,
	})

	return &dto.AdjustStockResponse{ProductID: pid.String(), NewBalance: newBalance}, nil
}

func (s *ledgerService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, movementToResponse(&m))
	}
	return &dto.MovementListResponse{Movements: items, Total: total, Page: page, Limit: limit}, nil
}

// LowStock returns every active product at or below its minimum level,
// most depleted first.
func (s *ledgerService) LowStock(ctx context.Context) ([]dto.LowStockItem, error) {
	rows, err := s.stockRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItem, 0, len(rows))
	for _, r := range rows {
		item := dto.LowStockItem{
			ProductID: r.ProductID.String(),
			Quantity:  r.Quantity,
		}
		if r.Product != nil {
			item.SKU = r.Product.SKU
			item.Name = r.Product.Name
			item.MinStockLevel = r.Product.MinStockLevel
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *ledgerService) StockOf(ctx context.Context, productID uuid.UUID) (*model.Stock, error) {
	stock, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("stock record")
		}
		return nil, err
	}
	return stock, nil
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:           m.ID.String(),
		ProductID:    m.ProductID.String(),
		Type:         string(m.Type),
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Notes:        m.Notes,
		PerformedBy:  m.PerformedBy.String(),
		CreatedAt:    m.CreatedAt,
	}
	if m.Product != nil {
		resp.ProductName = m.Product.Name
	}
	if m.ReferenceID != nil {
		ref := m.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}
