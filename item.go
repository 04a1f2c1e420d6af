package cart

import "github.com/shopspring/decimal"

// CatalogItem describes a purchasable item. Name is the unique key within a
// catalog and within a cart.
type CatalogItem struct {
	Name        string
	UnitPrice   decimal.Decimal
	Image       string
	Description string
}

// NewCatalogItem constructs a CatalogItem. Prices are not validated here.
func NewCatalogItem(name string, unitPrice decimal.Decimal) CatalogItem {
	return CatalogItem{Name: name, UnitPrice: unitPrice}
}

// Line is a catalog item held in a cart together with its aggregated quantity.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal returns UnitPrice x Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
