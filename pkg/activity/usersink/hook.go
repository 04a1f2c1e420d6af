package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-cart/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook records cart events in a go-users ActivitySink. The cart id becomes the
// record's object id and the cart fields land in Data.
type Hook struct {
	Sink usertypes.ActivitySink
	// NewID assigns record ids. Nil uses uuid.New.
	NewID func() uuid.UUID
}

// Notify implements activity.ActivityHook.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalize()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, h.record(event))
}

func (h Hook) record(event activity.Event) usertypes.ActivityRecord {
	newID := h.NewID
	if newID == nil {
		newID = uuid.New
	}
	return usertypes.ActivityRecord{
		ID:         newID(),
		ActorID:    uuidOrNil(event.ActorID),
		UserID:     uuidOrNil(event.UserID),
		TenantID:   uuidOrNil(event.TenantID),
		Verb:       event.Verb,
		ObjectType: activity.ObjectTypeCart,
		ObjectID:   event.CartID,
		Channel:    event.Channel,
		Data:       event.Data(),
		OccurredAt: event.OccurredAt,
	}
}

// uuidOrNil maps identifiers that are not UUIDs, such as the anonymous
// shopper, to uuid.Nil.
func uuidOrNil(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}
