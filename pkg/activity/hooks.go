package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/shopspring/decimal"
)

// Event is one cart change as hooks see it. Money stays decimal; sinks that
// need plain values use Data.
type Event struct {
	Verb     string
	CartID   string
	ActorID  string
	UserID   string
	TenantID string
	Channel  string

	Change   cart.ChangeKind
	Item     string
	Quantity int
	// Total and Count describe the cart after the change.
	Total decimal.Decimal
	Count int
	// Amount is the checked-out total on VerbPurchased events.
	Amount decimal.Decimal

	OccurredAt time.Time
}

// Valid reports whether the event names a verb and a cart.
func (e Event) Valid() bool {
	return e.Verb != "" && e.CartID != ""
}

// Normalize trims identifiers and stamps OccurredAt when missing.
func (e Event) Normalize() Event {
	e.Verb = strings.TrimSpace(e.Verb)
	e.CartID = strings.TrimSpace(e.CartID)
	e.ActorID = strings.TrimSpace(e.ActorID)
	e.UserID = strings.TrimSpace(e.UserID)
	e.TenantID = strings.TrimSpace(e.TenantID)
	e.Channel = strings.TrimSpace(e.Channel)
	e.Item = strings.TrimSpace(e.Item)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// Data flattens the cart fields into a plain map with money as fixed
// two-decimal strings.
func (e Event) Data() map[string]any {
	data := map[string]any{
		"change": string(e.Change),
		"total":  e.Total.StringFixed(2),
		"count":  e.Count,
	}
	if e.Item != "" {
		data["item"] = e.Item
	}
	if e.Quantity != 0 {
		data["quantity"] = e.Quantity
	}
	if e.Verb == VerbPurchased {
		data["amount"] = e.Amount.StringFixed(2)
	}
	return data
}

// ActivityHook receives normalized cart events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to every hook in order.
type Hooks []ActivityHook

// Notify normalizes event and delivers it to each hook. Invalid events are
// dropped. Hook failures do not stop delivery; they come back joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = event.Normalize()
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("activity: hook %d on %s: %w", i, event.Verb, err))
		}
	}
	return errors.Join(errs...)
}
