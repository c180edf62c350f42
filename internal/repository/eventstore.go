package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// EventStoreRepository maintains a per-aggregate version chain on top
// of an append-only event log. Chain versions start at 1 and the
// tracker id of the first event is inherited by every later event of
// the same chain.
type EventStoreRepository struct {
	log EventLog
}

// NewEventStoreRepository creates an event-store repository.
func NewEventStoreRepository(log EventLog) *EventStoreRepository {
	return &EventStoreRepository{log: log}
}

// FindAllByAggregateID returns every event for the aggregate in storage
// order. Zero events is ErrEntityNotFound, not an empty slice.
func (r *EventStoreRepository) FindAllByAggregateID(ctx context.Context, id entity.OrderID) ([]entity.DomainEvent, error) {
	docs, err := r.log.FindByAggregateID(ctx, string(id))
	if err != nil {
		return nil, fmt.Errorf("find events for aggregate %s: %w", id, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("events for aggregate %s: %w", id, entity.ErrEntityNotFound)
	}
	return decodeEvents(docs)
}

// FindAllByTrackerID returns every event sharing a correlation id,
// possibly empty.
func (r *EventStoreRepository) FindAllByTrackerID(ctx context.Context, trackerID string) ([]entity.DomainEvent, error) {
	docs, err := r.log.FindByTrackerID(ctx, trackerID)
	if err != nil {
		return nil, fmt.Errorf("find events for tracker %s: %w", trackerID, err)
	}
	return decodeEvents(docs)
}

// FindLatestByAggregateID returns the highest-version event for the
// aggregate, or ErrEntityNotFound.
func (r *EventStoreRepository) FindLatestByAggregateID(ctx context.Context, id entity.OrderID) (*entity.DomainEvent, error) {
	doc, err := r.log.FindLatestByAggregateID(ctx, string(id))
	if errors.Is(err, ErrNoDocument) {
		return nil, fmt.Errorf("latest event for aggregate %s: %w", id, entity.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find latest event for aggregate %s: %w", id, err)
	}

	var event entity.DomainEvent
	if err := json.Unmarshal(doc, &event); err != nil {
		return nil, fmt.Errorf("decode event for aggregate %s: %v: %w", id, err, entity.ErrPersistence)
	}
	return &event, nil
}

// Append inserts the event at the next position of its aggregate's
// chain. A prior event whose embedded aggregate version is ahead of the
// incoming one rejects the append with ErrEntityOutdated. The first
// event of a chain gets version 1 and keeps its freshly generated
// tracker id; later events inherit the chain's tracker id. A duplicate
// event id surfaces as ErrPersistence.
func (r *EventStoreRepository) Append(ctx context.Context, event *entity.DomainEvent) error {
	latest, err := r.FindLatestByAggregateID(ctx, event.Aggregate.ID)
	if err != nil && !errors.Is(err, entity.ErrEntityNotFound) {
		return err
	}

	if latest != nil {
		if latest.Aggregate.Version > event.Aggregate.Version {
			return fmt.Errorf("incoming aggregate version %d is behind recorded %d: %w",
				event.Aggregate.Version, latest.Aggregate.Version, entity.ErrEntityOutdated)
		}
		event.Version = latest.Version
		event.IncrementVersion()
		event.TrackerID = latest.TrackerID
	} else {
		event.Version = 0
		event.IncrementVersion()
	}

	doc, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	if err := r.log.Insert(ctx, event.ID, doc); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return fmt.Errorf("duplicate event id %s: %w", event.ID, entity.ErrPersistence)
		}
		return fmt.Errorf("append event %s: %w", event.ID, err)
	}
	return nil
}

// Rebuild reconstructs an aggregate from the event's embedded payload.
// A payload failing structural validation surfaces as ErrPersistence.
func (r *EventStoreRepository) Rebuild(event *entity.DomainEvent) (*entity.Order, error) {
	order := event.Aggregate.Clone()
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("rebuild aggregate from event %s: %v: %w", event.ID, err, entity.ErrPersistence)
	}
	return &order, nil
}

func decodeEvents(docs [][]byte) ([]entity.DomainEvent, error) {
	events := make([]entity.DomainEvent, 0, len(docs))
	for _, doc := range docs {
		var event entity.DomainEvent
		if err := json.Unmarshal(doc, &event); err != nil {
			return nil, fmt.Errorf("decode event: %v: %w", err, entity.ErrPersistence)
		}
		events = append(events, event)
	}
	return events, nil
}
