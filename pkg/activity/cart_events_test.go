package activity

import (
	"context"
	"testing"

	cart "github.com/goliatone/go-cart"
	"github.com/shopspring/decimal"
)

func TestVerbForChangeKinds(t *testing.T) {
	cases := map[cart.ChangeKind]string{
		cart.ChangeAdded:       VerbItemAdded,
		cart.ChangeIncremented: VerbItemAdded,
		cart.ChangeDecremented: VerbItemRemoved,
		cart.ChangeRemoved:     VerbItemRemoved,
		cart.ChangeCleared:     VerbCleared,
		cart.ChangeRestored:    VerbRestored,
		cart.ChangeNone:        "",
	}
	for kind, want := range cases {
		if got := VerbFor(kind); got != want {
			t.Fatalf("kind %q: expected %q, got %q", kind, want, got)
		}
	}
}

func TestBuildCartEventCarriesChange(t *testing.T) {
	event, ok := BuildCartEvent(CartEventInput{
		ActorID: " actor ",
		CartID:  " shop/carrito ",
		Change:  cart.Change{Kind: cart.ChangeIncremented, Name: "Apple", Quantity: 2},
		Total:   decimal.RequireFromString("5"),
		Count:   2,
	})
	if !ok {
		t.Fatalf("expected event")
	}
	if event.Verb != VerbItemAdded || event.CartID != "shop/carrito" || event.ActorID != "actor" {
		t.Fatalf("unexpected identity: %+v", event)
	}
	if event.Change != cart.ChangeIncremented || event.Item != "Apple" || event.Quantity != 2 {
		t.Fatalf("unexpected change fields: %+v", event)
	}
	if !event.Total.Equal(decimal.RequireFromString("5")) || event.Count != 2 {
		t.Fatalf("unexpected totals: %+v", event)
	}
}

func TestBuildCartEventSkipsNoChange(t *testing.T) {
	if _, ok := BuildCartEvent(CartEventInput{Change: cart.Change{Kind: cart.ChangeNone, Name: "Ghost"}}); ok {
		t.Fatalf("expected no event for ChangeNone")
	}
}

func TestBuildCartEventExplicitVerb(t *testing.T) {
	event, ok := BuildCartEvent(CartEventInput{
		Verb:   VerbPurchased,
		Change: cart.Change{Kind: cart.ChangeCleared, Quantity: 3},
		Amount: decimal.RequireFromString("12.5"),
	})
	if !ok {
		t.Fatalf("expected event")
	}
	if event.Verb != VerbPurchased || event.Change != cart.ChangeCleared {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Data()["amount"] != "12.50" {
		t.Fatalf("expected purchase amount, got %v", event.Data()["amount"])
	}
}

func TestEmitChange(t *testing.T) {
	recorder := &Recorder{}
	emitter := NewEmitter(Config{CartID: "carrito"}, recorder)

	if _, err := emitter.EmitChange(context.Background(), CartEventInput{Change: cart.Change{Kind: cart.ChangeNone}}); err != nil {
		t.Fatalf("emit none: %v", err)
	}
	event, err := emitter.EmitChange(context.Background(), CartEventInput{Change: cart.Change{Kind: cart.ChangeAdded, Name: "Pear", Quantity: 1}})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if event.Verb != VerbItemAdded {
		t.Fatalf("expected built event returned, got %+v", event)
	}
	events := recorder.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the real change recorded, got %d", len(events))
	}
	if got := events[0]; got.CartID != "carrito" || got.Channel != DefaultChannel || got.Item != "Pear" {
		t.Fatalf("unexpected recorded event: %+v", got)
	}
}
