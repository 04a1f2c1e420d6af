package catalog

import (
	"context"
	"errors"
	"fmt"

	cart "github.com/goliatone/go-cart"
	"github.com/goliatone/go-cart/pkg/rules"
)

// ErrItemNotFound is returned when an index or name is not in the catalog.
var ErrItemNotFound = errors.New("catalog: item not found")

// LoadError reports that the catalog could not be fetched or parsed. No
// partial catalog is ever returned alongside it.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Catalog is an immutable, ordered product list.
type Catalog struct {
	items []cart.CatalogItem
	index map[string]int
}

// New builds a catalog from items. Later duplicates of a name are ignored by
// Find but kept in Items; use Decode for validated input.
func New(items ...cart.CatalogItem) *Catalog {
	c := &Catalog{
		items: append([]cart.CatalogItem(nil), items...),
		index: make(map[string]int, len(items)),
	}
	for i, item := range c.items {
		if _, ok := c.index[item.Name]; !ok {
			c.index[item.Name] = i
		}
	}
	return c
}

// Load fetches from source. Any failure is wrapped in *LoadError.
func Load(ctx context.Context, source Source) (*Catalog, error) {
	if source == nil {
		return nil, &LoadError{Err: errors.New("catalog: source is required")}
	}
	items, err := source.Fetch(ctx)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return New(items...), nil
}

// Items returns a copy of the products in catalog order.
func (c *Catalog) Items() []cart.CatalogItem {
	if c == nil {
		return []cart.CatalogItem{}
	}
	return append([]cart.CatalogItem{}, c.items...)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the product at position i.
func (c *Catalog) At(i int) (cart.CatalogItem, error) {
	if c == nil || i < 0 || i >= len(c.items) {
		return cart.CatalogItem{}, fmt.Errorf("%w: index %d", ErrItemNotFound, i)
	}
	return c.items[i], nil
}

// Find returns the product named name.
func (c *Catalog) Find(name string) (cart.CatalogItem, error) {
	if c != nil {
		if i, ok := c.index[name]; ok {
			return c.items[i], nil
		}
	}
	return cart.CatalogItem{}, fmt.Errorf("%w: %q", ErrItemNotFound, name)
}

// filterVariables are the names each product exposes to a filter rule.
var filterVariables = []string{"nombre", "name", "precio", "price", "price_exact", "index"}

// Filter returns the products for which expr holds. Each product is exposed
// to the rule as nombre/name, precio/price and index. precio and price are
// float64, so equality against decimals like 0.9 is approximate; price_exact
// holds the exact decimal string ("0.9"). A nil evaluator uses expr-lang.
func (c *Catalog) Filter(evaluator rules.Evaluator, expr string) ([]cart.CatalogItem, error) {
	predicate, err := rules.NewPredicate(evaluator, expr,
		rules.WithLabel("catalog.filter"),
		rules.WithVariables(filterVariables...),
	)
	if err != nil {
		return nil, err
	}
	out := []cart.CatalogItem{}
	for i, item := range c.Items() {
		ok, err := predicate.Check(rules.RuleContext{Snapshot: itemSnapshot(i, item)})
		if err != nil {
			return nil, fmt.Errorf("catalog: filter %q: %w", item.Name, err)
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func itemSnapshot(i int, item cart.CatalogItem) map[string]any {
	price := item.UnitPrice.InexactFloat64()
	return map[string]any{
		"nombre":      item.Name,
		"name":        item.Name,
		"precio":      price,
		"price":       price,
		"price_exact": item.UnitPrice.String(),
		"index":       i,
	}
}
