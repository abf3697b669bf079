package ensemble

import "github.com/zulandar/ensemble/internal/models"

// EventKind identifies what changed in the store.
type EventKind string

const (
	EventMessage   EventKind = "message"
	EventHistory   EventKind = "history"
	EventRoster    EventKind = "roster"
	EventProfile   EventKind = "profile"
	EventIndicator EventKind = "indicator"
)

// Event is delivered to subscribers after a store mutation.
type Event struct {
	Kind      EventKind           `json:"kind"`
	Message   *models.ChatMessage `json:"message,omitempty"`
	Indicator string              `json:"indicator,omitempty"`
	Thinking  bool                `json:"thinking,omitempty"`
}

const subscriberBuffer = 64
