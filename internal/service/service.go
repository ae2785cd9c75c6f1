// Package service holds the business operations behind every API route.
// Services validate, run the repository calls of one operation inside one
// transaction and map store failures onto the errors in errors.go.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// JobDispatcher enqueues background notification jobs. Enqueue failures
// never fail the request that triggered them.
type JobDispatcher interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func enqueue(ctx context.Context, d JobDispatcher, jobType string, payload interface{}) {
	if d == nil {
		return
	}
	if err := d.Enqueue(ctx, jobType, payload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("job_type", jobType).Msg("failed to enqueue job")
	}
}

// dayStart truncates t to midnight in its own location.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
