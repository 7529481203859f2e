// Package ratelimit wraps golang.org/x/time/rate for the per-connection
// request throttle described in spec §4.2 component 3, grounded on the
// per-client rate.Limiter pattern in the pack's ingress middleware.
package ratelimit

import (
	"golang.org/x/time/rate"

	"github.com/boardwire/boardwire/internal/config"
)

// Limiter throttles the messages a single connection may submit. It is
// owned exclusively by that connection's receive loop, so it needs no
// internal locking.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter from cfg: max_requests per window_secs, with burst
// equal to max_requests.
func New(cfg config.RateLimitConfig) *Limiter {
	windowSecs := cfg.WindowSecs
	if windowSecs <= 0 {
		windowSecs = 1
	}
	perSecond := float64(cfg.MaxRequests) / float64(windowSecs)
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), cfg.MaxRequests)}
}

// Allow reports whether the current message may proceed, consuming one
// token if so.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
