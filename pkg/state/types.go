package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformed marks a persisted value that could not be decoded.
var ErrMalformed = errors.New("state: malformed snapshot")

// DefaultKey is the slot the cart is persisted under when Ref.Key is empty.
const DefaultKey = "carrito"

// Ref identifies one persisted snapshot. Namespace is optional and lets
// several carts share a backend.
type Ref struct {
	Namespace string
	Key       string
}

// Meta is storage-owned metadata used for trace and audit.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// KV is a durable string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Identifier returns the canonical storage key for r: the key alone, or
// "namespace/key" when a namespace is set.
func (r Ref) Identifier() (string, error) {
	key := strings.TrimSpace(r.Key)
	if key == "" {
		key = DefaultKey
	}
	namespace := strings.TrimSpace(r.Namespace)
	if strings.Contains(key, "/") {
		return "", fmt.Errorf("state: key %q must not contain '/'", key)
	}
	if strings.Contains(namespace, "/") {
		return "", fmt.Errorf("state: namespace %q must not contain '/'", namespace)
	}
	if namespace == "" {
		return key, nil
	}
	return namespace + "/" + key, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	return out
}
