package shop

// Messages holds the user-facing copy. Purchase texts take the total as
// their only format argument.
type Messages struct {
	CatalogErrorTitle   string
	CatalogErrorText    string
	EmptyCartTitle      string
	EmptyCartText       string
	RejectedTitle       string
	RejectedText        string
	PurchasePromptTitle string
	PurchasePromptText  string
	PurchasedTitle      string
	PurchasedText       string
	ClearPromptTitle    string
	ClearPromptText     string
	ClearedTitle        string
	ClearedText         string
}

// DefaultMessages is the shop's Spanish copy.
func DefaultMessages() Messages {
	return Messages{
		CatalogErrorTitle:   "Error",
		CatalogErrorText:    "Hubo un error al cargar los productos. Por favor, intenta de nuevo más tarde.",
		EmptyCartTitle:      "Carrito vacío",
		EmptyCartText:       "No hay productos en el carrito para comprar.",
		RejectedTitle:       "Compra no permitida",
		RejectedText:        "El carrito no cumple las condiciones de compra.",
		PurchasePromptTitle: "¿Confirmar compra?",
		PurchasePromptText:  "Total: $%s",
		PurchasedTitle:      "¡Compra realizada con éxito!",
		PurchasedText:       "Total: $%s. Muchas gracias por su compra.",
		ClearPromptTitle:    "¿Estás seguro?",
		ClearPromptText:     "Se eliminarán todos los productos del carrito",
		ClearedTitle:        "¡Carrito vaciado!",
		ClearedText:         "El carrito ha sido vaciado con éxito.",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&m.CatalogErrorTitle, d.CatalogErrorTitle)
	fill(&m.CatalogErrorText, d.CatalogErrorText)
	fill(&m.EmptyCartTitle, d.EmptyCartTitle)
	fill(&m.EmptyCartText, d.EmptyCartText)
	fill(&m.RejectedTitle, d.RejectedTitle)
	fill(&m.RejectedText, d.RejectedText)
	fill(&m.PurchasePromptTitle, d.PurchasePromptTitle)
	fill(&m.PurchasePromptText, d.PurchasePromptText)
	fill(&m.PurchasedTitle, d.PurchasedTitle)
	fill(&m.PurchasedText, d.PurchasedText)
	fill(&m.ClearPromptTitle, d.ClearPromptTitle)
	fill(&m.ClearPromptText, d.ClearPromptText)
	fill(&m.ClearedTitle, d.ClearedTitle)
	fill(&m.ClearedText, d.ClearedText)
	return m
}
