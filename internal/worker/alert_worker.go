package worker

// alert_worker.go
// Processes low-stock alert jobs from QueueAlerts: emails a digest of
// depleted products to the configured alert address. SMTP goes through a
// circuit breaker so a dead relay fails fast instead of hanging every worker.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertJobPayload is the job envelope sent to QueueAlerts.
type AlertJobPayload struct {
	Products []AlertProduct `json:"products"`
}

type AlertProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	MinLevel  int    `json:"min_level"`
}

type AlertWorker struct {
	mailer     *infra.Mailer
	breaker    *infra.CircuitBreaker
	alertEmail string
}

func NewAlertWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker, alertEmail string) *AlertWorker {
	return &AlertWorker{mailer: mailer, breaker: breaker, alertEmail: alertEmail}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}
	if len(payload.Products) == 0 {
		return nil
	}
	if w.alertEmail == "" {
		log.Warn().Msg("alert_worker: no alert email configured — skipping")
		return nil
	}

	var b strings.Builder
	b.WriteString("The following products are at or below their minimum stock level:\n\n")
	for _, p := range payload.Products {
		fmt.Fprintf(&b, "  %-40s  %d on hand (minimum %d)\n", p.Name, p.Quantity, p.MinLevel)
	}
	b.WriteString("\nReview pending purchase orders before the shelf runs dry.\n")

	subject := fmt.Sprintf("Low stock alert: %d product(s) need restocking", len(payload.Products))

	err := w.breaker.Execute(func() error {
		return w.mailer.Send(w.alertEmail, subject, b.String(), "")
	})
	if err != nil {
		return fmt.Errorf("alert_worker: send digest: %w", err)
	}

	log.Info().Int("products", len(payload.Products)).Str("to", w.alertEmail).Msg("alert_worker: digest sent")
	return nil
}
