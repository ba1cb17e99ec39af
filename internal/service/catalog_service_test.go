package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

type countingBatches struct {
	repository.StaticBatchRepository
	calls int
}

func (b *countingBatches) List(ctx context.Context) ([]models.Batch, error) {
	b.calls++
	return b.StaticBatchRepository.List(ctx)
}

func TestCatalogServiceListWithEnrollment(t *testing.T) {
	students := repository.NewMemoryStudentRepository()
	seedStudents(t, students, models.BatchMorning, 2)
	svc := NewCatalogService(repository.NewStaticBatchRepository(), students, nil, 0, nil)

	batches, err := svc.ListWithEnrollment(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 4)
	assert.Equal(t, models.BatchMorning, batches[0].BatchType)
	assert.Equal(t, 2, batches[0].Enrolled)
	assert.Equal(t, 28, batches[0].Remaining())
	assert.Equal(t, models.BatchPrivate, batches[3].BatchType)
	assert.Equal(t, 5, batches[3].Capacity)
	assert.Zero(t, batches[3].Enrolled)
}

func TestCatalogServiceGet(t *testing.T) {
	students := repository.NewMemoryStudentRepository()
	seedStudents(t, students, models.BatchPrivate, 5)
	svc := NewCatalogService(repository.NewStaticBatchRepository(), students, nil, 0, nil)

	batch, err := svc.Get(context.Background(), models.BatchPrivate)
	require.NoError(t, err)
	assert.Equal(t, "Private Tutoring", batch.Name)
	assert.True(t, batch.IsFull())
	assert.Zero(t, batch.Remaining())

	_, err = svc.Get(context.Background(), "weekend")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCatalogServiceCachesAndInvalidates(t *testing.T) {
	students := repository.NewMemoryStudentRepository()
	store := newMemoryCache()
	batches := &countingBatches{StaticBatchRepository: *repository.NewStaticBatchRepository()}
	metrics := NewMetricsService()
	cache := NewCacheService(store, metrics, time.Minute, nil, true)
	svc := NewCatalogService(batches, students, cache, 5*time.Minute, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, batches.calls)
	assert.Equal(t, 5*time.Minute, store.ttls[catalogCacheKey])

	count, err := svc.EnrollmentCount(ctx, models.BatchEvening)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, enrollmentCacheTTL, store.ttls["catalog:enrollment:evening"])

	seedStudents(t, students, models.BatchEvening, 1)
	count, _ = svc.EnrollmentCount(ctx, models.BatchEvening)
	assert.Zero(t, count, "served from cache until invalidated")

	svc.InvalidateEnrollment(ctx)
	count, _ = svc.EnrollmentCount(ctx, models.BatchEvening)
	assert.Equal(t, 1, count)

	_, hasCatalog := store.entries[catalogCacheKey]
	assert.True(t, hasCatalog)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.Equal(t, uint64(3), snapshot.CacheMisses)
}
