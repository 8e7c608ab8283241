// Package events publishes incident lifecycle events to optional sinks.
// Publishing is best effort: callers log failures and never roll back.
package events

import (
	"context"
	"errors"
	"time"

	"cake-tracker/internal/domain"

	"github.com/google/uuid"
)

// Type 事件类型
type Type string

const (
	IncidentCreated   Type = "incident.created"
	IncidentDelivered Type = "incident.delivered"
	IncidentOwed      Type = "incident.owed"
)

// Event is the JSON payload written to every sink.
type Event struct {
	EventID    string          `json:"event_id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Incident   domain.Incident `json:"incident"`
}

func NewEvent(t Type, inc domain.Incident) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Incident:   inc,
	}
}

// DeliveredEvent picks the event type matching a delivered toggle.
func DeliveredEvent(inc domain.Incident) Event {
	if inc.CakeDelivered {
		return NewEvent(IncidentDelivered, inc)
	}
	return NewEvent(IncidentOwed, inc)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MultiPublisher fans an event out to every sink and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
