// Package ratelimit implements per-key fixed-window request limiting.
package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"
)

const (
	DefaultMax    = 100
	DefaultWindow = 15 * time.Minute

	Message = "Too many requests from this IP, please try again later."
)

// Counter counts hits per key inside a fixed window. The first hit for a key
// opens the window; resetAt is when it closes.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Decision is the outcome for one request.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
	// RetryAfter is set when the request is rejected.
	RetryAfter time.Duration
}

type Limiter struct {
	counter Counter
	max     int64
	window  time.Duration
	now     func() time.Time
}

func New(counter Counter, max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		counter: counter,
		max:     int64(max),
		window:  window,
		now:     time.Now,
	}
}

// Allow records a hit for key. When the counter fails the request is allowed
// and the error is returned alongside so the caller can log it.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max,
			ResetAt:   l.now().Add(l.window),
		}, err
	}

	d := Decision{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: l.max - count,
		ResetAt:   resetAt,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = resetAt.Sub(l.now())
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}
	return d, nil
}

// Headers returns the RateLimit-* response headers, plus Retry-After on a
// rejected request. Durations are whole seconds rounded up.
func (d Decision) Headers(now time.Time) map[string]string {
	h := map[string]string{
		"RateLimit-Limit":     strconv.FormatInt(d.Limit, 10),
		"RateLimit-Remaining": strconv.FormatInt(d.Remaining, 10),
		"RateLimit-Reset":     strconv.FormatInt(ceilSeconds(d.ResetAt.Sub(now)), 10),
	}
	if !d.Allowed {
		h["Retry-After"] = strconv.FormatInt(ceilSeconds(d.RetryAfter), 10)
	}
	return h
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
