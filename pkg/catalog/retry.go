package catalog

import (
	"context"
	"fmt"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/jpillora/backoff"
)

// RetryConfig controls Retrying. Zero values fall back to three attempts
// between 100ms and 2s.
type RetryConfig struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Min <= 0 {
		c.Min = 100 * time.Millisecond
	}
	if c.Max <= 0 {
		c.Max = 2 * time.Second
	}
	if c.Max < c.Min {
		c.Max = c.Min
	}
	return c
}

// RetryingSource retries a failing Source with jittered exponential backoff.
type RetryingSource struct {
	source Source
	cfg    RetryConfig
}

// Retrying wraps source with retries.
func Retrying(source Source, cfg RetryConfig) *RetryingSource {
	return &RetryingSource{source: source, cfg: cfg.withDefaults()}
}

// Fetch implements Source. It stops early when ctx is done.
func (r *RetryingSource) Fetch(ctx context.Context) ([]cart.CatalogItem, error) {
	retry := backoff.Backoff{Min: r.cfg.Min, Max: r.cfg.Max, Jitter: true}
	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		items, err := r.source.Fetch(ctx)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if attempt == r.cfg.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("catalog: retry interrupted: %w", ctx.Err())
		case <-time.After(retry.Duration()):
		}
	}
	return nil, fmt.Errorf("catalog: %d attempts failed: %w", r.cfg.Attempts, lastErr)
}
