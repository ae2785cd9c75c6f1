package worker

// retry_cron.go
// Background goroutine that moves jobs whose backoff expired from the retry
// sorted set back onto the work queue. ZREM decides ownership, so several
// processes can run it without pushing a job twice.

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 5 * time.Second
	retryBatchSize    = 50

	retryBaseDelay = 30 * time.Second
	retryMaxDelay  = 30 * time.Minute
)

// RetryKey is the sorted set holding jobs waiting for their next attempt,
// scored by due time (unix seconds).
func RetryKey(queue string) string { return queue + ":retry" }

// StartRetryCron launches the promoter goroutine. It respects the context
// for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb redis.Cmdable, queue string) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				promoteDue(ctx, rdb, queue, time.Now())
			}
		}
	}()
}

func promoteDue(ctx context.Context, rdb redis.Cmdable, queue string, now time.Time) {
	key := RetryKey(queue)
	due, err := rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to read retry set")
		return
	}

	for _, member := range due {
		removed, err := rdb.ZRem(ctx, key, member).Result()
		if err != nil || removed == 0 {
			continue // another process took it
		}
		if err := rdb.LPush(ctx, queue, member).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
		}
	}
	if len(due) > 0 {
		log.Info().Int("count", len(due)).Msg("retry_cron: jobs requeued")
	}
}

// computeRetryBackoff doubles from 30s per attempt, capped at 30min.
func computeRetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := retryBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}
