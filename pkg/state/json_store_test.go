package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/goliatone/go-cart/pkg/state"
	"github.com/shopspring/decimal"
)

func TestJSONStoreWritesBareRecords(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryKV()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := state.NewJSONStore[[]cart.Record](kv,
		state.WithClock[[]cart.Record](func() time.Time { return fixed }),
		state.WithSnapshotIDs[[]cart.Record](func() string { return "snap-1" }),
	)

	records := []cart.Record{{Name: "Apple", UnitPrice: decimal.RequireFromString("2.5"), Quantity: 2}}
	meta, err := store.Save(ctx, state.Ref{}, records, state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID != "snap-1" || !meta.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected meta %+v", meta)
	}

	raw, ok, _ := kv.Get(ctx, state.DefaultKey)
	if !ok || raw != `[{"nombre":"Apple","precio":2.5,"cantidad":2}]` {
		t.Fatalf("unexpected stored value %q", raw)
	}

	loaded, loadedMeta, ok, err := store.Load(ctx, state.Ref{})
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Apple" || !loaded[0].UnitPrice.Equal(decimal.RequireFromString("2.5")) || loaded[0].Quantity != 2 {
		t.Fatalf("unexpected records %+v", loaded)
	}
	if loadedMeta.SnapshotID != "snap-1" {
		t.Fatalf("expected meta round trip, got %+v", loadedMeta)
	}
}

func TestJSONStoreKeepsCallerMeta(t *testing.T) {
	store := state.NewJSONStore[[]cart.Record](state.NewMemoryKV())
	meta, err := store.Save(context.Background(), state.Ref{Key: "wishlist"}, nil, state.Meta{SnapshotID: "mine"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID != "mine" || meta.UpdatedAt.IsZero() {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestJSONStoreMissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryKV()
	store := state.NewJSONStore[[]cart.Record](kv)

	if _, _, ok, err := store.Load(ctx, state.Ref{}); ok || err != nil {
		t.Fatalf("expected missing slot, got ok=%t err=%v", ok, err)
	}

	for _, payload := range []string{`{not json`, `{"nombre":"Apple"}`, ``, `[] []`} {
		if err := kv.Set(ctx, state.DefaultKey, payload); err != nil {
			t.Fatalf("set: %v", err)
		}
		_, _, ok, err := store.Load(ctx, state.Ref{})
		if !errors.Is(err, state.ErrMalformed) {
			t.Fatalf("payload %q: expected ErrMalformed, got %v", payload, err)
		}
		if ok {
			t.Fatalf("payload %q: expected ok=false", payload)
		}
	}
}

func TestJSONStoreDelete(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryKV()
	store := state.NewJSONStore[[]cart.Record](kv)
	if _, err := store.Save(ctx, state.Ref{}, []cart.Record{}, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(kv.Keys()) != 2 {
		t.Fatalf("expected value and meta keys, got %v", kv.Keys())
	}
	if err := store.Delete(ctx, state.Ref{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(kv.Keys()) != 0 {
		t.Fatalf("expected no keys, got %v", kv.Keys())
	}
}

func TestJSONStoreRejectsBadRef(t *testing.T) {
	store := state.NewJSONStore[[]cart.Record](state.NewMemoryKV())
	if _, err := store.Save(context.Background(), state.Ref{Key: "a/b"}, nil, state.Meta{}); err == nil {
		t.Fatalf("expected identifier error")
	}
}
