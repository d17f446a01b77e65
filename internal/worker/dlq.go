package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix names the parking list of a queue: a job that burns through its
// re-enqueue budget moves from "jobs:x" to "dlq:jobs:x" and waits there for
// an operator.
const DLQPrefix = "dlq:"

// DLQEntry is the parked job plus enough context to diagnose it without
// digging through logs.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a job that is out of attempts. Parking is best effort:
// if Redis itself is down the entry is logged and lost, never retried.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: entrada no serializable")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).RawJSON("entry", data).
			Msg("dlq: no se pudo estacionar el job")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).
		Str("reason", reason).Int("attempts", attempts).
		Msg("dlq: job estacionado")
}

// DLQLength reports how many jobs wait in a queue's parking list.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
