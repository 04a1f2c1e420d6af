package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "cart"

// Config carries the identity stamped on every event an Emitter sends.
type Config struct {
	Channel string
	CartID  string
	ActorID string
}

// Emitter turns cart changes into events and delivers them to hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. Nil hooks are dropped; an emitter with no
// hooks is disabled.
func NewEmitter(cfg Config, hooks ...ActivityHook) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	cfg.CartID = strings.TrimSpace(cfg.CartID)
	if cfg.CartID == "" {
		cfg.CartID = ObjectTypeCart
	}
	e := &Emitter{cfg: cfg}
	for _, hook := range hooks {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
	return e
}

// Enabled reports whether any hook is listening.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit fills blank identity fields from the emitter config and delivers
// event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.cfg.Channel
	}
	if strings.TrimSpace(event.CartID) == "" {
		event.CartID = e.cfg.CartID
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.cfg.ActorID
	}
	return e.hooks.Notify(ctx, event)
}

// EmitChange builds the event for input and emits it. Changes with nothing
// to report are skipped.
func (e *Emitter) EmitChange(ctx context.Context, input CartEventInput) (Event, error) {
	if !e.Enabled() {
		return Event{}, nil
	}
	event, ok := BuildCartEvent(input)
	if !ok {
		return Event{}, nil
	}
	return event, e.Emit(ctx, event)
}
