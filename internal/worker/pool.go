package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tireshop/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotifications = "jobs:notifications"

	JobLowStockAlert = "low_stock_alert"
	JobOrderReceipt  = "order_receipt"

	DefaultMaxAttempts = 5

	pollTimeout     = 5 * time.Second
	pollErrorDelay  = time.Second
	pollErrorMaxGap = 30 * time.Second
)

// ErrPermanent marks a job failure that retrying cannot fix (bad payload,
// unknown type, deleted order). Such jobs go straight to the DLQ.
var ErrPermanent = errors.New("permanent job failure")

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// HandlerFunc processes the payload of one job type.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into a Redis list.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb   redis.Cmdable
	queue string
}

func NewDispatcher(rdb redis.Cmdable) *Dispatcher {
	return &Dispatcher{rdb: rdb, queue: QueueNotifications}
}

// Enqueue pushes a job of jobType carrying payload.
func (d *Dispatcher) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{ID: uuid.NewString(), Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, d.queue, encoded).Err()
}

// Pool consumes one queue with a fixed number of goroutines. Failed jobs
// are parked in the retry set with exponential backoff; after maxAttempts
// they are moved to the DLQ.
type Pool struct {
	rdb         redis.Cmdable
	queue       string
	handlers    map[string]HandlerFunc
	maxAttempts int
	now         func() time.Time
	// errDelay is the first pause after a failed BRPOP; it doubles per
	// consecutive failure up to pollErrorMaxGap.
	errDelay time.Duration
}

func NewPool(rdb redis.Cmdable, handlers map[string]HandlerFunc) *Pool {
	return &Pool{
		rdb:         rdb,
		queue:       QueueNotifications,
		handlers:    handlers,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
		errDelay:    pollErrorDelay,
	}
}

// Start launches numWorkers goroutines plus the retry promoter.
// Each goroutine blocks on BRPOP between jobs.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	StartRetryCron(ctx, p.rdb, p.queue)
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	delay := p.errDelay
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}

		result, err := p.rdb.BRPop(ctx, pollTimeout, p.queue).Result()
		switch {
		case err == nil:
			delay = p.errDelay
			if len(result) == 2 {
				p.process(ctx, result[1])
			}
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			// empty queue after the timeout, or shutting down
		default:
			log.Error().Err(err).Int("worker", id).Dur("retry_in", delay).Msg("queue poll failed")
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			delay = min(delay*2, pollErrorMaxGap)
		}
	}
}

func (p *Pool) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", p.queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, p.queue, Job{Payload: json.RawMessage(raw)}, "unreadable envelope: "+err.Error())
		return
	}

	job.Attempts++
	err := p.handle(ctx, job)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(job.Type, "ok").Inc()
		log.Info().Str("type", job.Type).Str("job_id", job.ID).Msg("job processed")
		return
	}
	p.fail(ctx, job, err)
}

// handle routes job to its handler.
func (p *Pool) handle(ctx context.Context, job Job) error {
	h, ok := p.handlers[job.Type]
	if !ok {
		return fmt.Errorf("%w: unknown job type %q", ErrPermanent, job.Type)
	}
	return h(ctx, job.Payload)
}

func (p *Pool) fail(ctx context.Context, job Job, err error) {
	if errors.Is(err, ErrPermanent) || job.Attempts >= p.maxAttempts {
		SendToDLQ(ctx, p.rdb, p.queue, job, err.Error())
		return
	}

	due := p.now().Add(computeRetryBackoff(job.Attempts))
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Str("job_id", job.ID).Msg("failed to encode job for retry")
		return
	}
	if zErr := p.rdb.ZAdd(ctx, RetryKey(p.queue), redis.Z{Score: float64(due.Unix()), Member: encoded}).Err(); zErr != nil {
		log.Error().Err(zErr).Str("job_id", job.ID).Msg("failed to schedule retry")
		return
	}
	metrics.JobsProcessed.WithLabelValues(job.Type, "retry").Inc()
	log.Warn().
		Err(err).
		Str("type", job.Type).
		Str("job_id", job.ID).
		Int("attempts", job.Attempts).
		Time("next_attempt_at", due).
		Msg("job failed, retry scheduled")
}
