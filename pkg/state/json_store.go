package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-cart/internal/hydrate"
	"github.com/google/uuid"
)

const metaSuffix = "#meta"

// JSONStore persists snapshots as JSON values in a KV. The snapshot is stored
// verbatim under the ref identifier; Meta lives in a sibling key so the value
// format stays that of the bare snapshot.
type JSONStore[T any] struct {
	kv      KV
	decoder *hydrate.Decoder[T]
	now     func() time.Time
	newID   func() string
}

// JSONStoreOption configures a JSONStore.
type JSONStoreOption[T any] func(*JSONStore[T])

// WithDecoderOptions forwards hydrate options to the snapshot decoder.
func WithDecoderOptions[T any](opts ...hydrate.DecoderOption[T]) JSONStoreOption[T] {
	return func(s *JSONStore[T]) {
		s.decoder = hydrate.NewDecoder[T](opts...)
	}
}

// WithClock overrides the time source used to stamp Meta.UpdatedAt.
func WithClock[T any](now func() time.Time) JSONStoreOption[T] {
	return func(s *JSONStore[T]) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSnapshotIDs overrides the snapshot id generator.
func WithSnapshotIDs[T any](newID func() string) JSONStoreOption[T] {
	return func(s *JSONStore[T]) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewJSONStore[T any](kv KV, opts ...JSONStoreOption[T]) *JSONStore[T] {
	s := &JSONStore[T]{
		kv:      kv,
		decoder: hydrate.NewDecoder[T](),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load reads the snapshot for ref. A value that cannot be decoded returns an
// error wrapping ErrMalformed.
func (s *JSONStore[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	if s.kv == nil {
		return zero, Meta{}, false, fmt.Errorf("state: kv is required")
	}
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("state: load %q: %w", key, err)
	}
	if !ok {
		return zero, Meta{}, false, nil
	}
	snapshot, err := s.decoder.Decode(hydrate.Context{Key: key, Source: "kv"}, []byte(raw))
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return snapshot, s.loadMeta(ctx, key), true, nil
}

// loadMeta is best effort; missing or unreadable metadata yields Meta{}.
func (s *JSONStore[T]) loadMeta(ctx context.Context, key string) Meta {
	raw, ok, err := s.kv.Get(ctx, key+metaSuffix)
	if err != nil || !ok {
		return Meta{}
	}
	var meta Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return Meta{}
	}
	return meta
}

// Save writes snapshot and returns the stored Meta, generating a snapshot id
// and timestamp when meta leaves them empty.
func (s *JSONStore[T]) Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	if s.kv == nil {
		return Meta{}, fmt.Errorf("state: kv is required")
	}
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode %q: %w", key, err)
	}

	saved := mergeMeta(Meta{SnapshotID: s.newID(), UpdatedAt: s.now().UTC()}, meta)
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return Meta{}, fmt.Errorf("state: save %q: %w", key, err)
	}
	metaRaw, err := json.Marshal(saved)
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode meta %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, key+metaSuffix, string(metaRaw)); err != nil {
		return Meta{}, fmt.Errorf("state: save meta %q: %w", key, err)
	}
	return saved, nil
}

// Delete removes the snapshot and its metadata.
func (s *JSONStore[T]) Delete(ctx context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("state: delete %q: %w", key, err)
	}
	return s.kv.Delete(ctx, key+metaSuffix)
}
