// Package queue defines message payloads exchanged over the message broker,
// the best-effort publisher and the background audit consumer.
package queue

// Account event types carried in AccountEvent.Type.
const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
)

// AccountEvent is published on the account.events queue whenever an account
// is created or deleted.  It carries enough for downstream consumers to log
// or notify without querying the primary database.  No credential material is
// ever included.
type AccountEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	OccurredAt string `json:"occurred_at"`
}
