package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"tireshop/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	loginAttemptsPerMinute = 20
	purgeInterval          = 5 * time.Minute
)

// windowEntry counts requests from one IP within the current window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// fixedWindow is a per-IP fixed-window counter. Expired entries are purged
// lazily, at most once per purgeInterval.
type fixedWindow struct {
	mu        sync.Mutex
	entries   map[string]*windowEntry
	limit     int
	window    time.Duration
	nextPurge time.Time
	now       func() time.Time
}

func newFixedWindow(limit int, window time.Duration) *fixedWindow {
	return &fixedWindow{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// allow records one request from ip and reports whether it is within the
// limit. When it is not, the end of the current window is returned.
func (w *fixedWindow) allow(ip string) (bool, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.After(w.nextPurge) {
		w.purge(now)
		w.nextPurge = now.Add(purgeInterval)
	}

	e, ok := w.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(w.window)}
		w.entries[ip] = e
	}
	e.count++
	return e.count <= w.limit, e.windowEnd
}

func (w *fixedWindow) purge(now time.Time) {
	purged := 0
	for ip, e := range w.entries {
		if now.After(e.windowEnd) {
			delete(w.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(w.entries)).Msg("rate limiter entries purged")
	}
}

func (w *fixedWindow) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := w.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.WithCode(apierror.CodeRateLimited, msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newFixedWindow(loginAttemptsPerMinute, time.Minute).
		middleware("Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter limits every route to limit requests per window per IP.
// A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return newFixedWindow(limit, window).
		middleware("Muitas requisições. Tente novamente em instantes.")
}
