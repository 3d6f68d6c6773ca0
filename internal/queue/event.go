// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher used by HTTP handlers and the background consumer that records
// them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue every social event is routed to.
const QueueName = "social.events"

// Event types.
const (
	AccountRegistered = "account.registered"
	MessagePosted     = "message.posted"
	MessageUpdated    = "message.updated"
	MessageDeleted    = "message.deleted"
)

// Event is published after a successful account or message mutation. It
// carries enough information for consumers to log or notify without
// querying the database.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	AccountID  int64  `json:"account_id"`
	Username   string `json:"username,omitempty"`
	MessageID  int64  `json:"message_id,omitempty"`
	Text       string `json:"message_text,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewEvent stamps a fresh id and the current UTC time.
func NewEvent(typ string, accountID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		AccountID:  accountID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
