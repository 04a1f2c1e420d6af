package shop

import (
	"context"

	cart "github.com/goliatone/go-cart"
	"github.com/shopspring/decimal"
)

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message for the user. Total is set on purchase
// notices.
type Notice struct {
	Level NoticeLevel
	Title string
	Text  string
	Total decimal.Decimal
}

// View is everything a presenter needs to draw the shop.
type View struct {
	Catalog []cart.CatalogItem
	Lines   []cart.Line
	Total   decimal.Decimal
	Count   int
}

// Presenter draws views and shows notices. Errors are logged by the session
// and never undo a cart change.
type Presenter interface {
	Render(ctx context.Context, view View) error
	Notify(ctx context.Context, notice Notice) error
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) Render(context.Context, View) error   { return nil }
func (NopPresenter) Notify(context.Context, Notice) error { return nil }
