package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: renders a PDF receipt for a
// completed sale into the configured storage directory.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/infra"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	TransactionID string `json:"transaction_id"`
}

type ReceiptWorker struct {
	txRepo      repository.TransactionRepository
	storagePath string
}

func NewReceiptWorker(txRepo repository.TransactionRepository, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{txRepo: txRepo, storagePath: storagePath}
}

// Process renders the PDF. A malformed payload is dropped (retrying cannot
// fix it); a render or DB failure is returned so the pool retries.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}

	id, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		log.Error().Str("transaction_id", payload.TransactionID).Msg("receipt_worker: invalid transaction_id")
		return nil
	}

	t, err := w.txRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("receipt_worker: load transaction %s: %w", payload.TransactionID, err)
	}

	path, err := infra.GenerateReceiptPDF(t, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: render %s: %w", t.Code, err)
	}

	log.Info().Str("code", t.Code).Str("path", path).Msg("receipt_worker: receipt generated")
	return nil
}
