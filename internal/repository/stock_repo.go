package repository

import (
	"context"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository manages the current-balance rows. Balance mutations go
// through the Tx variants so callers can hold a row lock for the whole
// read-compute-write cycle.
type StockRepository interface {
	CreateTx(tx *gorm.DB, s *model.Stock) error
	FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Stock, error)

	// FindByProductTx acquires a FOR UPDATE lock on the row; the lock is
	// released when the surrounding transaction commits or rolls back.
	FindByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.Stock, error)
	UpdateQuantityTx(tx *gorm.DB, productID uuid.UUID, quantity int, movedAt time.Time) error

	ListLowStock(ctx context.Context) ([]model.Stock, error)
	CountLowStock(ctx context.Context) (int64, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Create(s).Error
}

func (r *stockRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&s).Error
	return &s, err
}

func (r *stockRepo) FindByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).First(&s).Error
	return &s, err
}

func (r *stockRepo) UpdateQuantityTx(tx *gorm.DB, productID uuid.UUID, quantity int, movedAt time.Time) error {
	return tx.Model(&model.Stock{}).Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":         quantity,
			"last_movement_at": movedAt,
		}).Error
}

// ListLowStock returns products at or below their minimum level, most urgent
// first (smallest quantity), ties broken by product name.
func (r *stockRepo) ListLowStock(ctx context.Context) ([]model.Stock, error) {
	var rows []model.Stock
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = stock.product_id").
		Where("products.active = true AND stock.quantity <= products.min_stock_level").
		Preload("Product").
		Order("stock.quantity ASC, products.name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Joins("JOIN products ON products.id = stock.product_id").
		Where("products.active = true AND stock.quantity <= products.min_stock_level").
		Count(&n).Error
	return n, err
}
