// Package queue defines the activity events exchanged over RabbitMQ and the
// publisher and consumer that move them.
package queue

import "time"

// ActivityQueue is the durable queue every activity event is routed to.
const ActivityQueue = "todo.events"

// Event types.
const (
	UserRegistered = "user.registered"
	TodoCreated    = "todo.created"
	TodoUpdated    = "todo.updated"
	TodoDeleted    = "todo.deleted"
)

// ActivityEvent is published after a successful registration or todo
// mutation.  It carries enough for downstream consumers to log or notify
// without querying the primary database.
type ActivityEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	TodoID     uint64 `json:"todo_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Completed  *bool  `json:"completed,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewActivityEvent stamps an event with the current UTC time.
func NewActivityEvent(typ string, userID uint64) ActivityEvent {
	return ActivityEvent{
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
