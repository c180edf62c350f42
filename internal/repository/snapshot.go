package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-ordering-service/internal/cache"
	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// SnapshotRepository is a cache-aside OrderRepository over a keyed
// document store. The cache is populated only on a read miss or after a
// successful write, never speculatively.
type SnapshotRepository struct {
	docs  DocumentStore
	cache cache.Cache
	ttl   time.Duration
}

// NewSnapshotRepository creates a snapshot repository. ttl applies to
// every cache set.
func NewSnapshotRepository(docs DocumentStore, c cache.Cache, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{docs: docs, cache: c, ttl: ttl}
}

// Load returns the current aggregate state, consulting the cache first.
// A cache hit never touches the document store and never refreshes the
// TTL. A miss falls through to the document store and populates the
// cache with the loaded value.
func (r *SnapshotRepository) Load(ctx context.Context, id entity.OrderID) (*entity.Order, error) {
	key := string(id)

	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cache for order %s: %w", id, err)
	}
	if cached != nil {
		var order entity.Order
		if err := json.Unmarshal(cached, &order); err != nil {
			return nil, fmt.Errorf("decode cached order %s: %w", id, err)
		}
		return &order, nil
	}

	doc, err := r.docs.FindByID(ctx, key)
	if errors.Is(err, ErrNoDocument) {
		return nil, fmt.Errorf("order %s: %w", id, entity.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}

	var order entity.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %v: %w", id, err, entity.ErrPersistence)
	}

	if err := r.cache.Set(ctx, key, doc, r.ttl); err != nil {
		return nil, fmt.Errorf("populate cache for order %s: %w", id, err)
	}
	return &order, nil
}

// Save persists one logical mutation on top of whatever is currently
// committed. An incoming version strictly behind the committed one is
// rejected with ErrEntityOutdated; an incoming version at or ahead of
// it is forced back to the committed value before the single increment.
// On success the document replaces the keyed record and the cache entry
// is overwritten with the newly persisted state.
func (r *SnapshotRepository) Save(ctx context.Context, order *entity.Order) error {
	current, err := r.Load(ctx, order.ID)
	if err != nil && !errors.Is(err, entity.ErrEntityNotFound) {
		return err
	}

	if current != nil {
		if order.Version < current.Version {
			return fmt.Errorf("incoming version %d is behind committed %d: %w",
				order.Version, current.Version, entity.ErrEntityOutdated)
		}
		order.Version = current.Version
	}
	order.IncrementVersion()

	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}

	key := string(order.ID)
	if err := r.docs.Replace(ctx, key, doc); err != nil {
		return fmt.Errorf("persist order %s: %v: %w", order.ID, err, entity.ErrPersistence)
	}

	if err := r.cache.Set(ctx, key, doc, r.ttl); err != nil {
		return fmt.Errorf("refresh cache for order %s: %w", order.ID, err)
	}
	return nil
}

// Delete removes the cache entry and then the document-store record.
// Deleting an absent id is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, id entity.OrderID) error {
	key := string(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("evict cache for order %s: %w", id, err)
	}
	if err := r.docs.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete order %s: %v: %w", id, err, entity.ErrPersistence)
	}
	return nil
}
