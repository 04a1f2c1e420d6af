package shop

import (
	"context"
	"sync"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

// SaveFunc writes a record snapshot.
type SaveFunc func(ctx context.Context, records []cart.Record) error

// maxRetryFactor caps the retry delay after failed saves at this multiple of
// the debounce delay.
const maxRetryFactor = 32

// DebouncedSaver keeps the latest record snapshot and writes it once no new
// snapshot has arrived for the configured delay. A failed write keeps the
// snapshot and retries on its own with a growing delay until it succeeds, a
// newer snapshot arrives or the saver is closed.
type DebouncedSaver struct {
	save   SaveFunc
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending []cart.Record
	dirty   bool
	timer   *time.Timer
	closed  bool
	retry   backoff.Backoff

	writeMu sync.Mutex
}

// NewDebouncedSaver builds a saver. A nil logger is replaced with a no-op.
func NewDebouncedSaver(save SaveFunc, delay time.Duration, logger *zap.Logger) *DebouncedSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebouncedSaver{
		save:   save,
		delay:  delay,
		logger: logger,
		retry: backoff.Backoff{
			Min:    delay,
			Max:    delay * maxRetryFactor,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Schedule replaces the pending snapshot and restarts the quiet period. After
// Close the snapshot is written immediately.
func (d *DebouncedSaver) Schedule(records []cart.Record) {
	d.mu.Lock()
	d.pending = records
	d.dirty = true
	if d.closed {
		d.mu.Unlock()
		d.flushLogged()
		return
	}
	d.rearm(d.delay)
	d.mu.Unlock()
}

func (d *DebouncedSaver) flushLogged() {
	if err := d.Flush(context.Background()); err != nil {
		d.logger.Error("debounced save failed", zap.Error(err))
	}
}

// Pending reports whether a snapshot is waiting to be written.
func (d *DebouncedSaver) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Flush writes the pending snapshot now, if any.
func (d *DebouncedSaver) Flush(ctx context.Context) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	if !d.dirty {
		d.mu.Unlock()
		return nil
	}
	records := d.pending
	d.pending = nil
	d.dirty = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	if err := d.save(ctx, records); err != nil {
		d.mu.Lock()
		if !d.dirty {
			d.pending = records
			d.dirty = true
			d.rearm(d.retry.Duration())
		}
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.retry.Reset()
	d.mu.Unlock()
	return nil
}

// rearm schedules the next timed flush. Callers hold d.mu.
func (d *DebouncedSaver) rearm(wait time.Duration) {
	if d.closed {
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.flushLogged)
		return
	}
	d.timer.Reset(wait)
}

// Close stops the timer and writes whatever is pending.
func (d *DebouncedSaver) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	return d.Flush(ctx)
}
