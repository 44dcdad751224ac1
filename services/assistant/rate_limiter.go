package assistant

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter for assistant API requests. Run
// polling issues a request a second per active conversation; the bucket
// keeps bursts of concurrent conversations from tripping 429s.
type RateLimiter struct {
	mu sync.Mutex

	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	minInterval    time.Duration
	backoff        float64 // multiplier applied after 429s
}

// RateLimiterConfig holds configuration for the rate limiter
type RateLimiterConfig struct {
	MaxTokens   float64       // Max burst capacity (default: 20)
	RefillRate  float64       // Tokens per second (default: 5)
	MinInterval time.Duration // Minimum time between requests (default: 50ms)
}

// DefaultRateLimiterConfig returns sensible defaults for the assistant API
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxTokens:   20,
		RefillRate:  5,
		MinInterval: 50 * time.Millisecond,
	}
}

// NewRateLimiter creates a new rate limiter with the given config
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		tokens:         config.MaxTokens,
		maxTokens:      config.MaxTokens,
		refillRate:     config.RefillRate,
		lastRefillTime: time.Now(),
		minInterval:    config.MinInterval,
		backoff:        1.0,
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refillTokens()

		if r.tokens >= 1 {
			r.tokens--
			interval := time.Duration(float64(r.minInterval) * r.backoff)
			r.mu.Unlock()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			return nil
		}

		// Time until one token refills
		wait := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// SetBackoffMultiplier slows future requests after a 429 response.
func (r *RateLimiter) SetBackoffMultiplier(m float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m > r.backoff {
		r.backoff = m
	}
}

// ResetBackoff restores the normal request cadence.
func (r *RateLimiter) ResetBackoff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backoff = 1.0
}

func (r *RateLimiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefillTime).Seconds()
	r.lastRefillTime = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}
