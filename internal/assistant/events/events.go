// Package events publishes account state-change notifications.
//
// The assistant emits an event whenever a dispatched intent mutates account
// state (card frozen/unfrozen, bill paid). Publishing is best-effort by
// contract: a failed publish is logged by the caller and never corrupts or
// rolls back account state.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Event types.
const (
	CardFrozen   = "card.frozen"
	CardUnfrozen = "card.unfrozen"
	BillPaid     = "bill.paid"
)

// Event is a single account state change.
type Event struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	Status     string    `json:"status,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	NewBalance int64     `json:"newBalance,omitempty"`
}

// Publisher delivers state-change events to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// LogPublisher writes events to the structured log. It is the default
// publisher when no broker is configured.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(_ context.Context, evt Event) error {
	slog.Info("account event",
		"type", evt.Type,
		"status", evt.Status,
		"amount", evt.Amount,
		"newBalance", evt.NewBalance,
	)
	return nil
}
