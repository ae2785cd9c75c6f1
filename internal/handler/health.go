package handler

import (
	"context"
	"net/http"
	"time"

	"tireshop/internal/infra"
	"tireshop/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	depUp   = "connected"
	depDown = "error"
)

// healthReport never carries error text, only dependency states.
type healthReport struct {
	OK    bool   `json:"ok"`
	DB    string `json:"db"`
	Redis string `json:"redis"`
	// Mail is the SMTP breaker state; an open breaker delays receipts
	// but does not make the API unhealthy.
	Mail        string `json:"mail,omitempty"`
	PendingJobs *int64 `json:"pending_jobs,omitempty"`
	DeadJobs    *int64 `json:"dead_jobs,omitempty"`
}

// Health pings the database and Redis; either one down answers 503.
func Health(db *gorm.DB, rdb redis.Cmdable, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		report := healthReport{DB: depDown, Redis: depDown}
		if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			report.DB = depUp
		}
		if rdb.Ping(ctx).Err() == nil {
			report.Redis = depUp
			if n, err := rdb.LLen(ctx, worker.QueueNotifications).Result(); err == nil {
				report.PendingJobs = &n
			}
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueNotifications); err == nil {
				report.DeadJobs = &n
			}
		}
		if mailCB != nil {
			report.Mail = mailCB.State().String()
		}

		report.OK = report.DB == depUp && report.Redis == depUp
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
