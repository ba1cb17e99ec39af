package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/handler"
	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	"github.com/noah-isme/edubatch-api/internal/service"
	"github.com/noah-isme/edubatch-api/pkg/cache"
	"github.com/noah-isme/edubatch-api/pkg/config"
	"github.com/noah-isme/edubatch-api/pkg/database"
)

// studentStore is the capability every student store implementation offers.
type studentStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	CountByBatch(ctx context.Context, batchType models.BatchType) (int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type batchStore interface {
	List(ctx context.Context) ([]models.Batch, error)
}

type wizardStore interface {
	Save(ctx context.Context, wizard *models.Wizard) error
	Get(ctx context.Context, id string) (*models.Wizard, error)
	Delete(ctx context.Context, id string) error
}

// stores holds the backing stores chosen at startup.
type stores struct {
	db      *sqlx.DB
	redis   *redis.Client
	cache   *repository.CacheRepository
	student studentStore
	batches batchStore
	wizards wizardStore
}

func openStores(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*stores, error) {
	s := &stores{}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.redis = client
	}
	s.cache = repository.NewCacheRepository(s.redis, logr)

	switch {
	case cfg.Store.SQL():
		db, err := database.Open(cfg)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
		}
		s.db = db
		if err := repository.Migrate(ctx, db, models.DefaultBatches()); err != nil {
			s.close()
			return nil, err
		}
		s.student = repository.NewStudentRepository(db, metrics)
		s.batches = repository.NewBatchRepository(db)
	case cfg.Store.Driver == config.StoreRedis:
		s.student = repository.NewRedisStudentRepository(s.redis, cfg.Redis.StudentsKey)
		s.batches = repository.NewStaticBatchRepository()
	default:
		s.student = repository.NewMemoryStudentRepository()
		s.batches = repository.NewStaticBatchRepository()
	}

	if s.redis != nil {
		s.wizards = repository.NewRedisWizardRepository(s.cache, cfg.Wizard.TTL)
	} else {
		s.wizards = repository.NewMemoryWizardRepository(cfg.Wizard.TTL)
	}

	logr.Info("stores ready",
		zap.String("driver", cfg.Store.Driver),
		zap.Bool("redis", s.redis != nil),
	)
	return s, nil
}

func (s *stores) readinessChecks() map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{}
	if s.db != nil {
		checks["database"] = s.db.PingContext
	}
	if s.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return s.redis.Ping(ctx).Err() }
	}
	return checks
}

func (s *stores) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
