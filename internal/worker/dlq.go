package worker

// Jobs that exhaust their retries are parked in a Redis list per source queue
// (dlq:{queue}) for manual inspection and replay.

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry preserves the failed job plus enough context to trace it back to
// the transaction or product that produced it without decoding the payload.
type DLQEntry struct {
	OriginalQueue string            `json:"original_queue"`
	JobType       string            `json:"job_type"`
	Payload       json.RawMessage   `json:"payload"`
	Refs          map[string]string `json:"refs,omitempty"`
	Reason        string            `json:"reason"`
	Attempts      int               `json:"attempts"`
	FailedAt      time.Time         `json:"failed_at"`
}

// DeadLetterQueue parks poisoned jobs per source queue.
type DeadLetterQueue struct {
	rdb *redis.Client
}

func NewDeadLetterQueue(rdb *redis.Client) *DeadLetterQueue {
	return &DeadLetterQueue{rdb: rdb}
}

func (q *DeadLetterQueue) key(queue string) string { return DLQPrefix + queue }

// Push parks a job that exhausted its retries. Best-effort: a DLQ failure is
// logged, never propagated, since the job is already lost to the caller.
func (q *DeadLetterQueue) Push(ctx context.Context, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Refs:          payloadRefs(job.Payload),
		Reason:        reason,
		Attempts:      job.Attempts,
		FailedAt:      time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := q.rdb.LPush(ctx, q.key(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", q.key(queue)).Msg("dlq: failed to push entry")
		return
	}

	evt := log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts)
	for k, v := range entry.Refs {
		evt = evt.Str(k, v)
	}
	evt.Msg("dlq: job moved to dead letter queue")
}

// Length reports the number of parked entries for a queue.
func (q *DeadLetterQueue) Length(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, q.key(queue)).Result()
}

// payloadRefs lifts identifier fields (transaction_id, product_id, ...) out of
// the payload's top level so a DLQ entry names what it belongs to.
func payloadRefs(payload json.RawMessage) map[string]string {
	var m map[string]interface{}
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil
	}
	refs := make(map[string]string)
	for k, v := range m {
		s, ok := v.(string)
		if ok && strings.HasSuffix(k, "_id") {
			refs[k] = s
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}
