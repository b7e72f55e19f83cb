// Package ratelimit throttles requests per client IP with token buckets.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
)

const MsgTooMany = "Too many requests, please try again later"

// maxKeys bounds the limiter map between cleanups.
const maxKeys = 10000

type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func New(perSecond, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// IPExtractor picks the address the limiter keys on. Forwarding headers are
// honoured only when trustProxy is set, and then only from private hops.
func IPExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

// Middleware keys on c.RealIP, so the server must set e.IPExtractor.
func (l *Limiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.RealIP()
		if !l.get(key).Allow() {
			logging.FromContext(c.Request().Context()).Warn("rate_limit_exceeded", "key", key)
			return echo.NewHTTPError(http.StatusTooManyRequests, MsgTooMany)
		}
		return next(c)
	}
}

func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.limiters) > maxKeys {
		l.limiters = make(map[string]*rate.Limiter)
	}
}

// StartCleanup runs Cleanup every interval until stop is closed.
func (l *Limiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
