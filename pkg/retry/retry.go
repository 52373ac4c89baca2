// Package retry backs off and re-runs infrastructure bring-up. Postgres,
// Redis and Kafka connections all go through Do before the process gives up.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config controls the backoff schedule. Intervals grow by Multiplier per
// attempt, capped at MaxInterval, with +-JitterFactor random spread.
type Config struct {
	// MaxRetries is the number of re-runs after the first attempt
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor of 0.1 spreads each interval by +-10%
	JitterFactor float64
}

// DefaultConfig returns the schedule used when callers pass nil
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func (c *Config) normalize() {
	if c.InitialInterval <= 0 {
		c.InitialInterval = 1 * time.Second
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2.0
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
}

// Operation is a single attempt; returning nil stops the retry loop
type Operation func(ctx context.Context) error

// Result reports how the retry loop ended. Err is nil on success,
// ErrMaxRetriesExceeded or ErrContextCanceled otherwise; LastError keeps the
// final attempt's error for wrapping.
type Result struct {
	Err       error
	LastError error
	Attempts  int
}

// Do runs op until it succeeds, the attempts are used up, or ctx ends
func Do(ctx context.Context, cfg *Config, op Operation) *Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()

	result := &Result{}
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			result.Err = ErrContextCanceled
			return result
		}

		result.Attempts++
		err := op(ctx)
		if err == nil {
			return result
		}
		result.LastError = err

		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			result.Err = ErrContextCanceled
			return result
		case <-time.After(interval(cfg, attempt)):
		}
	}

	result.Err = ErrMaxRetriesExceeded
	return result
}

// interval computes the wait before retry number attempt+1
func interval(cfg *Config, attempt int) time.Duration {
	d := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt))
	if limit := float64(cfg.MaxInterval); d > limit {
		d = limit
	}
	if cfg.JitterFactor > 0 {
		spread := d * cfg.JitterFactor
		d = d - spread + rand.Float64()*2*spread
	}
	return time.Duration(d)
}
