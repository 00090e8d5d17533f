// Package events defines the fire-and-forget notification contract between
// the services and the external notification sink. Delivery failure never
// fails or rolls back the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
)

// Event names emitted by the core.
const (
	EventUserCreated = "user_created"
	EventItemCreated = "item_created"
)

// Event is a named notification with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given name and payload.
func NewEvent(name string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Name:      name,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UserCreatedPayload is the payload of a user_created event.
type UserCreatedPayload struct {
	Username string `json:"username"`
}

// NewUserCreatedEvent builds the event emitted after a successful
// registration.
func NewUserCreatedEvent(username string) (*Event, error) {
	return NewEvent(EventUserCreated, UserCreatedPayload{Username: username})
}

// NewItemCreatedEvent builds the event emitted after a successful item
// creation. The payload is the full item.
func NewItemCreatedEvent(item *domain.Item) (*Event, error) {
	return NewEvent(EventItemCreated, item)
}

// Handler processes emitted events.
type Handler interface {
	// HandleEvent processes the given event. Returning an error marks the
	// delivery as failed; the emitter logs it and moves on.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter publishes events to the notification sink.
type Emitter interface {
	// EmitEvent publishes the event. Implementations must not block the
	// caller on sink failures beyond returning an error for logging.
	EmitEvent(ctx context.Context, event *Event) error
}
