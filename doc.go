// Package cart implements the shopping cart aggregate: catalog items, cart
// lines with aggregated quantities, the derived total, and the persisted record
// shape used to checkpoint a cart between sessions.
//
// The Cart never touches storage or presentation. Every mutation returns a
// Change describing what happened; the orchestrating layer (see pkg/shop)
// routes that change through a single persist-and-render step.
//
// Data flow:
//
//	catalog.Source -> catalog.Catalog -> Cart.Add/Remove/Clear -> Change
//	Cart.Records() -> state.CartStore -> Restore(records) -> Cart
package cart
