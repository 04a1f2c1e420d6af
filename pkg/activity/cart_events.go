package activity

import (
	"strings"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/shopspring/decimal"
)

// Verbs emitted for cart lifecycle events.
const (
	VerbItemAdded   = "cart.item.added"
	VerbItemRemoved = "cart.item.removed"
	VerbCleared     = "cart.cleared"
	VerbPurchased   = "cart.purchased"
	VerbRestored    = "cart.restored"
)

// ObjectTypeCart is the object type sinks record for cart events and the
// default cart id.
const ObjectTypeCart = "cart"

// CartEventInput describes a cart change and the identity around it.
type CartEventInput struct {
	Verb   string
	Change cart.Change
	Total  decimal.Decimal
	Count  int
	Amount decimal.Decimal

	CartID     string
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	OccurredAt time.Time
}

// VerbFor maps a change kind to its event verb. ChangeNone has no verb.
func VerbFor(kind cart.ChangeKind) string {
	switch kind {
	case cart.ChangeAdded, cart.ChangeIncremented:
		return VerbItemAdded
	case cart.ChangeDecremented, cart.ChangeRemoved:
		return VerbItemRemoved
	case cart.ChangeCleared:
		return VerbCleared
	case cart.ChangeRestored:
		return VerbRestored
	default:
		return ""
	}
}

// BuildCartEvent constructs the event for a cart change. An explicit Verb
// wins over the one derived from the change. The boolean is false when there
// is nothing to report.
func BuildCartEvent(input CartEventInput) (Event, bool) {
	verb := strings.TrimSpace(input.Verb)
	if verb == "" {
		verb = VerbFor(input.Change.Kind)
	}
	if verb == "" {
		return Event{}, false
	}
	return Event{
		Verb:       verb,
		CartID:     input.CartID,
		ActorID:    input.ActorID,
		UserID:     input.UserID,
		TenantID:   input.TenantID,
		Channel:    input.Channel,
		Change:     input.Change.Kind,
		Item:       input.Change.Name,
		Quantity:   input.Change.Quantity,
		Total:      input.Total,
		Count:      input.Count,
		Amount:     input.Amount,
		OccurredAt: input.OccurredAt,
	}.Normalize(), true
}
