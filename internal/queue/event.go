// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "time"

// ActivityQueue is the durable queue every activity event is published to.
const ActivityQueue = "user.activity"

// Activity event types.
const (
	EventRegistered = "user.registered"
	EventLoggedIn   = "user.logged_in"
	EventLoggedOut  = "user.logged_out"
	EventCheckedIn  = "user.checked_in"
)

// ActivityEvent is published after a user-visible account action succeeds.
// It carries enough state for downstream consumers to log or trigger
// analytics without querying the primary database.
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     uint64    `json:"userId"`
	Email      string    `json:"email,omitempty"`
	XP         int       `json:"xp,omitempty"`
	Level      string    `json:"level,omitempty"`
	Streak     int       `json:"streak,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
