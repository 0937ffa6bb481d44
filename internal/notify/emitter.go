package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Channel carries every change event. Subscribers filter client-side by kind.
const Channel = "events:changes"

// Event kinds, matching the resources clients can subscribe to.
const (
	KindTransaction = "transaction"
	KindInventory   = "inventory"
	KindProduct     = "product"
	KindDashboard   = "dashboard"
	KindUser        = "user"
)

// Event is a change notification pushed to connected clients.
type Event struct {
	Kind      string      `json:"kind"`
	Action    string      `json:"action"` // created | updated | deleted | status_changed | adjusted
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Emitter publishes events to Redis. Delivery is best-effort: a publish
// failure is logged and swallowed so it can never fail a business operation.
type Emitter struct {
	rdb *redis.Client
}

func NewEmitter(rdb *redis.Client) *Emitter {
	return &Emitter{rdb: rdb}
}

func (e *Emitter) Emit(ctx context.Context, kind, action string, payload interface{}) {
	if e == nil || e.rdb == nil {
		return
	}
	ev := Event{Kind: kind, Action: action, Payload: payload, Timestamp: time.Now().UTC()}
	raw, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("notify: marshal event")
		return
	}
	if err := e.rdb.Publish(ctx, Channel, raw).Err(); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("action", action).Msg("notify: publish failed")
	}
}
