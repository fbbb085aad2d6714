package events

import "time"

// Event types published on the user-events queue.
const (
	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
)

// UserEvent is the JSON payload put on the RabbitMQ queue after a successful
// write to the user store. Consumers (cmd/worker) fan these out to email and
// audit sinks; delivery is best-effort and never blocks the request path.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
