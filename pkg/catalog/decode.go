package catalog

import (
	"errors"
	"fmt"
	"strings"

	cart "github.com/goliatone/go-cart"
	"github.com/goliatone/go-cart/internal/hydrate"
	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog marks a document that parsed but failed validation.
var ErrInvalidCatalog = errors.New("catalog: invalid document")

type document struct {
	Productos []product `json:"productos"`
}

type product struct {
	Nombre      string           `json:"nombre"`
	Precio      *decimal.Decimal `json:"precio"`
	Imagen      string           `json:"imagen,omitempty"`
	Descripcion string           `json:"descripcion,omitempty"`
}

var documentDecoder = hydrate.NewDecoder[document](
	hydrate.WithPreHook[document](wrapBareArray),
	hydrate.WithPostHook[document](validateDocument),
)

// Decode parses a catalog document of the form
// {"productos":[{"nombre":..., "precio":..., "imagen":...}]}. A bare array of
// products is accepted as well. Any invalid product rejects the whole
// document.
func Decode(payload []byte) ([]cart.CatalogItem, error) {
	return decodeFrom("productos.json", payload)
}

func decodeFrom(source string, payload []byte) ([]cart.CatalogItem, error) {
	doc, err := documentDecoder.Decode(hydrate.Context{Key: "productos", Source: source}, payload)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", source, err)
	}
	items := make([]cart.CatalogItem, 0, len(doc.Productos))
	for _, p := range doc.Productos {
		items = append(items, cart.CatalogItem{
			Name:        p.Nombre,
			UnitPrice:   *p.Precio,
			Image:       p.Imagen,
			Description: p.Descripcion,
		})
	}
	return items, nil
}

func wrapBareArray(_ hydrate.Context, payload any) (any, error) {
	if list, ok := payload.([]any); ok {
		return map[string]any{"productos": list}, nil
	}
	return payload, nil
}

func validateDocument(_ hydrate.Context, doc *document) error {
	seen := make(map[string]int, len(doc.Productos))
	for i, p := range doc.Productos {
		if strings.TrimSpace(p.Nombre) == "" {
			return fmt.Errorf("%w: product %d has no nombre", ErrInvalidCatalog, i)
		}
		if p.Precio == nil {
			return fmt.Errorf("%w: product %q has no precio", ErrInvalidCatalog, p.Nombre)
		}
		if p.Precio.IsNegative() {
			return fmt.Errorf("%w: product %q has negative precio %s", ErrInvalidCatalog, p.Nombre, p.Precio)
		}
		if first, dup := seen[p.Nombre]; dup {
			return fmt.Errorf("%w: product %q repeated at %d and %d", ErrInvalidCatalog, p.Nombre, first, i)
		}
		seen[p.Nombre] = i
	}
	return nil
}
