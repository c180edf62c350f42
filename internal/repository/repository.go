package repository

import (
	"context"
	"errors"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// OrderRepository stores the current state of order aggregates.
type OrderRepository interface {
	Load(ctx context.Context, id entity.OrderID) (*entity.Order, error)
	Save(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id entity.OrderID) error
}

// EventStore is the append-only log of order domain events.
type EventStore interface {
	FindAllByAggregateID(ctx context.Context, id entity.OrderID) ([]entity.DomainEvent, error)
	FindAllByTrackerID(ctx context.Context, trackerID string) ([]entity.DomainEvent, error)
	FindLatestByAggregateID(ctx context.Context, id entity.OrderID) (*entity.DomainEvent, error)
	Append(ctx context.Context, event *entity.DomainEvent) error
	Rebuild(event *entity.DomainEvent) (*entity.Order, error)
}

// Storage-level sentinels returned by DocumentStore and EventLog
// implementations.
var (
	ErrNoDocument     = errors.New("document not found")
	ErrDuplicateEvent = errors.New("duplicate event id")
)

// DocumentStore is the keyed document storage behind the snapshot
// repository. Replace has upsert semantics; Delete of an absent key is
// not an error.
type DocumentStore interface {
	FindByID(ctx context.Context, id string) ([]byte, error)
	Replace(ctx context.Context, id string, doc []byte) error
	Delete(ctx context.Context, id string) error
}

// EventLog is the raw event storage behind the event-store repository.
// Insert fails with ErrDuplicateEvent when the event id already exists.
// Find results come back in storage order.
type EventLog interface {
	Insert(ctx context.Context, id string, doc []byte) error
	FindByAggregateID(ctx context.Context, aggregateID string) ([][]byte, error)
	FindByTrackerID(ctx context.Context, trackerID string) ([][]byte, error)
	FindLatestByAggregateID(ctx context.Context, aggregateID string) ([]byte, error)
}
