// Package state persists the cart between sessions.
//
// Layers, from the bottom up:
//   - KV is a durable string key-value store (MemoryKV, FileKV, SQLiteKV).
//   - Store[T] loads/saves one snapshot for one Ref; JSONStore[T] implements it
//     over a KV, decoding through internal/hydrate.
//   - Checkpointer implements CartStore by saving cart.Records() under the
//     cart slot (DefaultKey unless a Ref says otherwise).
//
// Data flow:
//
//	cart.Cart -> Records() -> JSONStore -> KV
//	KV -> JSONStore -> cart.Restore(records) -> cart.Cart
//
// The stored value is the bare JSON array of records, for example
// [{"nombre":"Apple","precio":2.5,"cantidad":2}]. Meta is kept beside it under
// "<identifier>#meta".
//
// A value that fails to decode surfaces as ErrMalformed. Checkpointer.LoadCart
// still returns an empty cart in that case so callers can carry on.
package state
