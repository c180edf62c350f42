package entity

import (
	"time"

	"github.com/google/uuid"
)

// Domain event names emitted over the order lifecycle.
const (
	EventOrderCreated   = "order_created"
	EventOrderPaid      = "order_paid"
	EventOrderCancelled = "order_cancelled"
)

// DomainEvent is an immutable record of one committed transition. It
// embeds a value copy of the aggregate taken at creation time, so later
// in-memory mutations never reach back into a recorded fact.
//
// Version is the event's position in the aggregate's chain, counted
// independently from the aggregate's own version. TrackerID correlates
// every event of one chain: the event store keeps the freshly generated
// one for the first event and copies it forward for the rest.
type DomainEvent struct {
	ID        string    `json:"id"`
	EventName string    `json:"event_name"`
	TrackerID string    `json:"tracker_id"`
	Datetime  time.Time `json:"datetime"`
	Version   int       `json:"version"`
	Aggregate Order     `json:"aggregate"`
}

func newDomainEvent(name string, order *Order) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.NewString(),
		EventName: name,
		TrackerID: uuid.NewString(),
		Datetime:  time.Now().UTC(),
		Version:   0,
		Aggregate: order.Clone(),
	}
}

// NewOrderCreated wraps the aggregate in an order_created event.
func NewOrderCreated(order *Order) *DomainEvent {
	return newDomainEvent(EventOrderCreated, order)
}

// NewOrderPaid wraps the aggregate in an order_paid event.
func NewOrderPaid(order *Order) *DomainEvent {
	return newDomainEvent(EventOrderPaid, order)
}

// NewOrderCancelled wraps the aggregate in an order_cancelled event.
func NewOrderCancelled(order *Order) *DomainEvent {
	return newDomainEvent(EventOrderCancelled, order)
}

// IncrementVersion bumps the event's chain position by one.
func (e *DomainEvent) IncrementVersion() {
	e.Version++
}
