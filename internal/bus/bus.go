// Package bus provides the event bus used to notify dashboards of new
// query logs without polling.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/moodlog/internal/models"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type.
	Type string `json:"type"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// TopicQueryLogged carries one event per committed query log row.
const TopicQueryLogged = "query.logged"

// QueryLoggedPayload is the payload of a TopicQueryLogged event.
type QueryLoggedPayload struct {
	ID    int64   `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewQueryLoggedEvent builds the event for a freshly committed row.
func NewQueryLoggedEvent(log models.QueryLog) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      TopicQueryLogged,
		Timestamp: time.Now().Unix(),
		Payload: QueryLoggedPayload{
			ID:    log.ID,
			Label: log.ModelLabel,
			Score: log.ModelScore,
		},
	}
}
