package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

type memDocs struct {
	docs       map[string][]byte
	replaceErr error
	findCalls  int
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string][]byte{}}
}

func (m *memDocs) FindByID(_ context.Context, id string) ([]byte, error) {
	m.findCalls++
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), doc...), nil
}

func (m *memDocs) Replace(_ context.Context, id string, doc []byte) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.docs[id] = append([]byte(nil), doc...)
	return nil
}

func (m *memDocs) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

type memCache struct {
	entries map[string][]byte
	sets    int
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), entry...), nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	delete(m.entries, key)
	return nil
}

func newSnapshotOrder(t *testing.T) *entity.Order {
	t.Helper()
	order, err := entity.NewOrder(
		"buyer-1",
		[]entity.OrderItem{{ProductID: "product-1", Amount: decimal.NewFromInt(2)}},
		decimal.NewFromInt(24),
		decimal.NewFromInt(50),
		"payment-1",
	)
	require.NoError(t, err)
	return order
}

func setupSnapshotRepo(t *testing.T) (*SnapshotRepository, *memDocs, *memCache) {
	t.Helper()
	docs := newMemDocs()
	cache := newMemCache()
	return NewSnapshotRepository(docs, cache, 300*time.Second), docs, cache
}

func TestLoadNotFound(t *testing.T) {
	repo, _, _ := setupSnapshotRepo(t)

	_, err := repo.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrEntityNotFound)
}

func TestLoadCacheHitSkipsDocumentStore(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	docs.findCalls = 0
	cache.sets = 0

	loaded, err := repo.Load(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
	assert.Equal(t, 0, docs.findCalls)
	// No TTL refresh on a hit either.
	assert.Equal(t, 0, cache.sets)
}

func TestLoadMissPopulatesCache(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	// Evict so the next load goes through the document store.
	cache.entries = map[string][]byte{}

	loaded, err := repo.Load(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Version, loaded.Version)

	cached, ok := cache.entries[string(order.ID)]
	require.True(t, ok)
	assert.JSONEq(t, string(docs.docs[string(order.ID)]), string(cached))
}

func TestSaveNewOrderStartsAtVersionOne(t *testing.T) {
	repo, docs, _ := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)

	require.NoError(t, repo.Save(context.Background(), order))
	assert.Equal(t, 1, order.Version)

	var stored entity.Order
	require.NoError(t, json.Unmarshal(docs.docs[string(order.ID)], &stored))
	assert.Equal(t, 1, stored.Version)
}

func TestSaveVersionMonotonicity(t *testing.T) {
	repo, _, _ := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)

	for want := 1; want <= 5; want++ {
		require.NoError(t, repo.Save(context.Background(), order))
		assert.Equal(t, want, order.Version)
	}
}

func TestSaveRejectsStaleWriter(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))
	require.NoError(t, repo.Save(context.Background(), order))
	require.Equal(t, 2, order.Version)

	docBefore := append([]byte(nil), docs.docs[string(order.ID)]...)
	cacheBefore := append([]byte(nil), cache.entries[string(order.ID)]...)

	stale := order.Clone()
	stale.Version = 1

	err := repo.Save(context.Background(), &stale)
	assert.ErrorIs(t, err, entity.ErrEntityOutdated)
	assert.Equal(t, docBefore, docs.docs[string(order.ID)])
	assert.Equal(t, cacheBefore, cache.entries[string(order.ID)])
}

func TestSaveForcesAheadVersionBack(t *testing.T) {
	repo, _, _ := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	ahead := order.Clone()
	ahead.Version = 10

	require.NoError(t, repo.Save(context.Background(), &ahead))
	assert.Equal(t, 2, ahead.Version)
}

func TestSaveRefreshesCacheWithPersistedState(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	require.NoError(t, order.Pay(true))
	require.NoError(t, repo.Save(context.Background(), order))

	key := string(order.ID)
	assert.JSONEq(t, string(docs.docs[key]), string(cache.entries[key]))

	var cached entity.Order
	require.NoError(t, json.Unmarshal(cache.entries[key], &cached))
	assert.Equal(t, entity.StatusPaid, cached.Status)
	assert.Equal(t, 2, cached.Version)
}

func TestSaveDocumentStoreFailure(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	docs.replaceErr = errors.New("connection reset")

	order := newSnapshotOrder(t)
	err := repo.Save(context.Background(), order)
	assert.ErrorIs(t, err, entity.ErrPersistence)
	assert.Empty(t, cache.entries)
}

func TestConcurrentEqualVersionWritersBothSucceed(t *testing.T) {
	// The asymmetric check rejects only writers strictly behind the
	// version they observe at save time. Two writers that both loaded
	// version 2 before either committed both pass the check, so both
	// succeed and the last document wins. The interleaving is
	// reproduced by rewinding the cache to the version-2 state between
	// the two writes, so the second save observes what it loaded.
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))
	require.NoError(t, repo.Save(context.Background(), order))
	require.Equal(t, 2, order.Version)

	key := string(order.ID)
	versionTwoDoc := append([]byte(nil), cache.entries[key]...)

	first := order.Clone()
	second := order.Clone()

	require.NoError(t, first.Pay(true))
	require.NoError(t, second.Cancel())

	assert.NoError(t, repo.Save(context.Background(), &first))

	cache.entries[key] = versionTwoDoc
	assert.NoError(t, repo.Save(context.Background(), &second))

	assert.Equal(t, 3, first.Version)
	assert.Equal(t, 3, second.Version)

	var stored entity.Order
	require.NoError(t, json.Unmarshal(docs.docs[key], &stored))
	assert.Equal(t, entity.StatusCancelled, stored.Status)
	assert.Equal(t, 3, stored.Version)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, docs, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	require.NoError(t, repo.Delete(context.Background(), order.ID))
	assert.Empty(t, docs.docs)
	assert.Empty(t, cache.entries)

	assert.NoError(t, repo.Delete(context.Background(), order.ID))
	assert.NoError(t, repo.Delete(context.Background(), "never-existed"))
}

func TestDeleteEvictsCacheFirst(t *testing.T) {
	repo, _, cache := setupSnapshotRepo(t)
	order := newSnapshotOrder(t)
	require.NoError(t, repo.Save(context.Background(), order))

	require.NoError(t, repo.Delete(context.Background(), order.ID))
	assert.Equal(t, []string{string(order.ID)}, cache.deletes)

	_, err := repo.Load(context.Background(), order.ID)
	assert.ErrorIs(t, err, entity.ErrEntityNotFound)
}
