package worker

// dlq.go
// Notifications that exhausted their attempts, or can never succeed, are
// parked in a capped Redis list per queue ("dlq:<queue>") for an operator
// to inspect. /health reports its length.

import (
	"context"
	"encoding/json"
	"time"

	"tireshop/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// deadLetterCap bounds the list; the oldest entries fall off.
	deadLetterCap = 1000
)

func deadLetterKey(queue string) string { return DLQPrefix + queue }

// DeadLetter is one parked job with the last failure that stopped it.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobID    string          `json:"job_id,omitempty"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// SendToDLQ parks job in the dead letter list of queue. Failures are only
// logged: there is nowhere else to put the job.
func SendToDLQ(ctx context.Context, rdb redis.Cmdable, queue string, job Job, reason string) {
	letter := DeadLetter{
		Queue:    queue,
		JobID:    job.ID,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}
	logger := log.With().Str("queue", queue).Str("type", job.Type).Str("job_id", job.ID).Logger()

	data, err := json.Marshal(letter)
	if err != nil {
		logger.Error().Err(err).Msg("dead letter not encodable, job dropped")
		return
	}

	key := deadLetterKey(queue)
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, deadLetterCap-1)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("dead letter push failed, job dropped")
		return
	}

	metrics.JobsProcessed.WithLabelValues(job.Type, "dead").Inc()
	logger.Warn().Str("reason", reason).Int("attempts", job.Attempts).Msg("job moved to dead letters")
}

// DLQLength is the number of parked jobs of queue.
func DLQLength(ctx context.Context, rdb redis.Cmdable, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}
