package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubTxRepo is a minimal in-memory TransactionRepository for worker tests.
type stubTxRepo struct {
	txs map[uuid.UUID]*model.Transaction
}

func newStubTxRepo() *stubTxRepo {
	return &stubTxRepo{txs: make(map[uuid.UUID]*model.Transaction)}
}

func (r *stubTxRepo) Create(_ context.Context, _ *gorm.DB, t *model.Transaction) error {
	r.txs[t.ID] = t
	return nil
}

func (r *stubTxRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTxRepo) List(_ context.Context, _ dto.TransactionFilter) ([]model.Transaction, int64, error) {
	return nil, 0, nil
}

func (r *stubTxRepo) ListRecent(_ context.Context, _ int) ([]model.Transaction, error) {
	return nil, nil
}

func (r *stubTxRepo) Save(_ context.Context, t *model.Transaction) error {
	r.txs[t.ID] = t
	return nil
}

func (r *stubTxRepo) ReplaceItems(_ context.Context, _ *model.Transaction, _ []model.TransactionItem) error {
	return nil
}

func (r *stubTxRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.txs, id)
	return nil
}

func (r *stubTxRepo) NextCodeNumber(_ context.Context, _ *gorm.DB) (int, error) { return 1, nil }

func (r *stubTxRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, _ []model.TransactionStatus, to model.TransactionStatus, _ map[string]interface{}) (int64, error) {
	t, ok := r.txs[id]
	if !ok {
		return 0, nil
	}
	t.Status = to
	return 1, nil
}

func (r *stubTxRepo) DB() *gorm.DB { return nil }

var _ repository.TransactionRepository = (*stubTxRepo)(nil)

func completedSale() *model.Transaction {
	now := time.Now().UTC()
	return &model.Transaction{
		ID:               uuid.New(),
		Code:             "SAL-2026-000042",
		Type:             model.TxSale,
		Status:           model.StatusCompleted,
		CounterpartyName: "Walk-in Customer",
		Subtotal:         decimal.NewFromInt(300),
		TaxAmount:        decimal.NewFromInt(30),
		TotalAmount:      decimal.NewFromInt(330),
		CompletedAt:      &now,
		CreatedAt:        now,
		Items: []model.TransactionItem{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(150),
				LineTotal: decimal.NewFromInt(300),
				Product:   &model.Product{Name: "Brake Pad Set", SKU: "BRK-001"},
			},
		},
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestReceiptWorker_GeneratesPDF(t *testing.T) {
	repo := newStubTxRepo()
	sale := completedSale()
	repo.txs[sale.ID] = sale
	dir := t.TempDir()

	w := NewReceiptWorker(repo, dir)
	err := w.Process(context.Background(), mustJSON(t, ReceiptJobPayload{TransactionID: sale.ID.String()}))
	require.NoError(t, err)

	path := filepath.Join(dir, "receipt_SAL-2026-000042.pdf")
	info, statErr := os.Stat(path)
	require.NoError(t, statErr, "receipt file should exist on disk")
	assert.Greater(t, info.Size(), int64(0))
}

func TestReceiptWorker_MalformedPayloadDropped(t *testing.T) {
	w := NewReceiptWorker(newStubTxRepo(), t.TempDir())

	// Garbage payloads are dropped, not retried
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{broken`)))
	assert.NoError(t, w.Process(context.Background(), mustJSON(t, ReceiptJobPayload{TransactionID: "not-a-uuid"})))
}

func TestReceiptWorker_MissingTransactionRetryable(t *testing.T) {
	w := NewReceiptWorker(newStubTxRepo(), t.TempDir())

	err := w.Process(context.Background(), mustJSON(t, ReceiptJobPayload{TransactionID: uuid.New().String()}))
	assert.Error(t, err, "a load failure must be returned so the pool retries")
}
