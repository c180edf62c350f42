package messaging

import (
	"context"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// TopicOrderEvents carries every committed order transition, keyed by
// aggregate id so one aggregate's events stay ordered.
const TopicOrderEvents = "orders.events"

// Publisher delivers domain events to the message broker. Publishing is
// awaited before a command returns but the service never reads replies.
type Publisher interface {
	Publish(ctx context.Context, event *entity.DomainEvent) error
}
