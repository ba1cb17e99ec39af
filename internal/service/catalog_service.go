package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

const (
	catalogCacheKey       = "catalog:batches"
	enrollmentCachePrefix = "catalog:enrollment:"
	enrollmentCacheTTL    = 30 * time.Second
)

type batchSource interface {
	List(ctx context.Context) ([]models.Batch, error)
}

type enrollmentCounter interface {
	CountByBatch(ctx context.Context, batchType models.BatchType) (int, error)
}

// CatalogService serves batch offerings and their enrollment counts.
type CatalogService struct {
	batches  batchSource
	students enrollmentCounter
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs the catalog service. cache may be nil.
func NewCatalogService(batches batchSource, students enrollmentCounter, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{batches: batches, students: students, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns the batch offerings in display order.
func (s *CatalogService) List(ctx context.Context) ([]models.Batch, error) {
	var cached []models.Batch
	if hit, _ := s.cache.Get(ctx, catalogCacheKey, &cached); hit {
		return cached, nil
	}
	batches, err := s.batches.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}
	_ = s.cache.Set(ctx, catalogCacheKey, batches, s.cacheTTL)
	return batches, nil
}

// EnrollmentCount returns the number of students registered for batchType.
func (s *CatalogService) EnrollmentCount(ctx context.Context, batchType models.BatchType) (int, error) {
	key := enrollmentCachePrefix + string(batchType)
	var count int
	if hit, _ := s.cache.Get(ctx, key, &count); hit {
		return count, nil
	}
	count, err := s.students.CountByBatch(ctx, batchType)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollment")
	}
	_ = s.cache.Set(ctx, key, count, enrollmentCacheTTL)
	return count, nil
}

// ListWithEnrollment returns every batch with its current enrollment count.
func (s *CatalogService) ListWithEnrollment(ctx context.Context) ([]models.BatchWithEnrollment, error) {
	batches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.BatchWithEnrollment, 0, len(batches))
	for _, batch := range batches {
		enrolled, err := s.EnrollmentCount(ctx, batch.BatchType)
		if err != nil {
			return nil, err
		}
		result = append(result, models.BatchWithEnrollment{Batch: batch, Enrolled: enrolled})
	}
	return result, nil
}

// Get returns one batch with its enrollment count.
func (s *CatalogService) Get(ctx context.Context, batchType models.BatchType) (*models.BatchWithEnrollment, error) {
	batches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, batch := range batches {
		if batch.BatchType != batchType {
			continue
		}
		enrolled, err := s.EnrollmentCount(ctx, batchType)
		if err != nil {
			return nil, err
		}
		return &models.BatchWithEnrollment{Batch: batch, Enrolled: enrolled}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
}

// InvalidateEnrollment drops cached enrollment counts after a registration.
func (s *CatalogService) InvalidateEnrollment(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, enrollmentCachePrefix+"*"); err != nil {
		s.logger.Warn("enrollment cache not invalidated", zap.Error(err))
	}
}
