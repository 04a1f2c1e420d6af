package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cart "github.com/goliatone/go-cart"
)

// CartStore loads and saves the cart slot.
type CartStore interface {
	LoadCart(ctx context.Context) (*cart.Cart, cart.RestoreReport, error)
	SaveCart(ctx context.Context, c *cart.Cart) error
}

// Checkpointer persists cart records through a Store under one Ref.
type Checkpointer struct {
	store Store[[]cart.Record]
	ref   Ref

	mu   sync.Mutex
	meta Meta
}

// CheckpointerOption configures a Checkpointer.
type CheckpointerOption func(*Checkpointer)

// WithRef selects the slot. The zero Ref maps to DefaultKey.
func WithRef(ref Ref) CheckpointerOption {
	return func(c *Checkpointer) {
		c.ref = ref
	}
}

// NewCheckpointer builds a CartStore over store.
func NewCheckpointer(store Store[[]cart.Record], opts ...CheckpointerOption) *Checkpointer {
	c := &Checkpointer{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// NewKVCheckpointer is NewCheckpointer over a JSONStore backed by kv.
func NewKVCheckpointer(kv KV, opts ...CheckpointerOption) *Checkpointer {
	return NewCheckpointer(NewJSONStore[[]cart.Record](kv), opts...)
}

// Ref returns the slot reference.
func (c *Checkpointer) Ref() Ref {
	return c.ref
}

// Meta returns the metadata of the last snapshot loaded or saved.
func (c *Checkpointer) Meta() Meta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// LoadCart restores the saved cart. A missing slot yields an empty cart. A
// malformed slot also yields an empty cart, together with an error wrapping
// ErrMalformed so the caller can report it.
func (c *Checkpointer) LoadCart(ctx context.Context) (*cart.Cart, cart.RestoreReport, error) {
	if c.store == nil {
		return nil, cart.RestoreReport{}, fmt.Errorf("state: store is required")
	}
	records, meta, ok, err := c.store.Load(ctx, c.ref)
	if errors.Is(err, ErrMalformed) {
		return cart.New(), cart.RestoreReport{}, err
	}
	if err != nil {
		return nil, cart.RestoreReport{}, err
	}
	if !ok {
		return cart.New(), cart.RestoreReport{}, nil
	}
	c.mu.Lock()
	c.meta = meta
	c.mu.Unlock()
	restored, report := cart.Restore(records)
	return restored, report, nil
}

// SaveCart writes the cart's records.
func (c *Checkpointer) SaveCart(ctx context.Context, current *cart.Cart) error {
	if c.store == nil {
		return fmt.Errorf("state: store is required")
	}
	if current == nil {
		current = cart.New()
	}
	return c.SaveRecords(ctx, current.Records())
}

// SaveRecords writes an already captured record snapshot.
func (c *Checkpointer) SaveRecords(ctx context.Context, records []cart.Record) error {
	if records == nil {
		records = []cart.Record{}
	}
	meta, err := c.store.Save(ctx, c.ref, records, Meta{})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.meta = meta
	c.mu.Unlock()
	return nil
}
