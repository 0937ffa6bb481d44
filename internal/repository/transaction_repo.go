package repository

import (
	"context"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Transaction, error)
	Save(ctx context.Context, t *model.Transaction) error
	ReplaceItems(ctx context.Context, t *model.Transaction, items []model.TransactionItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextCodeNumber(ctx context.Context, tx *gorm.DB) (int, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from []model.TransactionStatus, to model.TransactionStatus, set map[string]interface{}) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != "" {
		q = q.Where("DATE(created_at) >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("DATE(created_at) <= ?", filter.DateTo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&txs).Error

	return txs, total, err
}

func (r *transactionRepo) ListRecent(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var txs []model.Transaction
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Order("created_at DESC").Limit(limit).Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) Save(ctx context.Context, t *model.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// ReplaceItems swaps a draft's line items and saves the new totals atomically.
func (r *transactionRepo) ReplaceItems(ctx context.Context, t *model.Transaction, items []model.TransactionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&model.TransactionItem{}).Error; err != nil {
			return err
		}
		t.Items = items
		return tx.Save(t).Error
	})
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Transaction{}, id).Error
	})
}

// UpdateStatusTx flips the status only while the current value is still one of
// from, returning how many rows changed. Zero rows means another writer won the
// race; the row lock taken by the UPDATE serializes concurrent callers.
func (r *transactionRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from []model.TransactionStatus, to model.TransactionStatus, set map[string]interface{}) (int64, error) {
	fields := map[string]interface{}{"status": to}
	for k, v := range set {
		fields[k] = v
	}
	res := tx.Model(&model.Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *transactionRepo) NextCodeNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic code generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('transactions_code_seq')").Scan(&num).Error
	return num, err
}
