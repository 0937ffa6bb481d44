package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/apierror"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Price lookups tolerate at most a minute of staleness; writes invalidate
// the entry anyway, so the TTL only covers out-of-band catalog edits.
const priceCacheTTL = 60 * time.Second

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// PriceBySKU is the hot-path lookup for the counter terminal, served from
	// a short-lived Redis cache.
	PriceBySKU(ctx context.Context, sku string) (*dto.PriceLookupResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	stockRepo repository.StockRepository
	rdb       *redis.Client
	emitter   *notify.Emitter
}

func NewProductService(repo repository.ProductRepository, stockRepo repository.StockRepository, rdb *redis.Client, emitter *notify.Emitter) ProductService {
	return &productService{repo: repo, stockRepo: stockRepo, rdb: rdb, emitter: emitter}
}

// Create registers a product and its zero-quantity balance row atomically.
// Initial stock arrives later through a ledger adjustment, never here.
func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if existing, err := s.repo.FindBySKU(ctx, req.SKU); err == nil && existing != nil && existing.ID != uuid.Nil {
		return nil, apierror.Conflict("a product with SKU " + req.SKU + " already exists")
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}
	p := &model.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		Unit:          unit,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		MinStockLevel: req.MinStockLevel,
		Active:        true,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(orDB(tx, s.repo.DB()), p); err != nil {
			return err
		}
		return s.stockRepo.CreateTx(orDB(tx, s.stockRepo.DB()), &model.Stock{ProductID: p.ID, Quantity: 0})
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitter.Emit(ctx, notify.KindProduct, "created", map[string]interface{}{
		"id": p.ID.String(), "sku": p.SKU,
	})
	return p, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Unit != nil && *req.Unit != "" {
		p.Unit = *req.Unit
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, apierror.Validation("cost_price must not be negative")
		}
		p.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, apierror.Validation("selling_price must not be negative")
		}
		p.SellingPrice = *req.SellingPrice
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}

	// Detach the balance row so Save doesn't cascade into it
	p.Stock = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidatePriceCache(ctx, p.SKU)
	s.emitter.Emit(ctx, notify.KindProduct, "updated", map[string]interface{}{
		"id": p.ID.String(), "sku": p.SKU,
	})
	return p, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidatePriceCache(ctx, p.SKU)
	s.emitter.Emit(ctx, notify.KindProduct, "deleted", map[string]interface{}{
		"id": id.String(), "sku": p.SKU,
	})
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Reactivate(ctx, id)
}

func (s *productService) PriceBySKU(ctx context.Context, sku string) (*dto.PriceLookupResponse, error) {
	key := "price:sku:" + sku

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var cached dto.PriceLookupResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product with SKU " + sku)
		}
		return nil, err
	}
	if !p.Active {
		return nil, apierror.NotFound("product with SKU " + sku)
	}

	resp := &dto.PriceLookupResponse{
		SKU:          p.SKU,
		Name:         p.Name,
		SellingPrice: p.SellingPrice,
		Unit:         p.Unit,
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, raw, priceCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("sku", sku).Msg("product: price cache set")
			}
		}
	}
	return resp, nil
}

func (s *productService) invalidatePriceCache(ctx context.Context, sku string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "price:sku:"+sku).Err(); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("product: price cache invalidate")
	}
}
