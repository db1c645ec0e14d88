package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-agency/internal/queue"
)

// EventPublisher receives domain events after the change is stored.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SocialEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.SocialEvent) error { return nil }

// publish is best effort: a failure is logged and never reaches the
// caller.
func publish(ctx context.Context, pub EventPublisher, ev queue.SocialEvent) {
	if err := pub.Publish(ctx, ev); err != nil {
		log.Printf("events: publish %s: %v", ev.Type, err)
	}
}

func orNop(pub EventPublisher) EventPublisher {
	if pub == nil {
		return nopPublisher{}
	}
	return pub
}

func systemClock() time.Time { return time.Now().UTC() }

func newUUID() string { return uuid.NewString() }

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
