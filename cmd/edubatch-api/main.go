package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edubatch-api/api/swagger"
	"github.com/noah-isme/edubatch-api/internal/handler"
	"github.com/noah-isme/edubatch-api/internal/repository"
	"github.com/noah-isme/edubatch-api/internal/service"
	"github.com/noah-isme/edubatch-api/pkg/config"
	"github.com/noah-isme/edubatch-api/pkg/jobs"
	"github.com/noah-isme/edubatch-api/pkg/logger"
	"github.com/noah-isme/edubatch-api/pkg/messaging"
)

// @title EduBatch Academy API
// @version 1.0.0
// @description Batch catalog, registration wizard and student roster
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	st, err := openStores(ctx, cfg, metrics, logr)
	if err != nil {
		return err
	}
	defer st.close()

	var events *service.EventService
	if cfg.NATS.URL != "" {
		publisher, err := messaging.NewPublisher(cfg.NATS, logr)
		if err != nil {
			return err
		}
		defer publisher.Close() //nolint:errcheck
		events = service.NewEventService(publisher, logr)
	} else {
		logr.Info("NATS_URL not set, registration events are only logged")
		events = service.NewEventService(nil, logr)
	}
	queue := jobs.NewQueue("events", events.Handle, jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: cfg.Events.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	events.AttachQueue(queue)

	h, academics := buildHandlers(cfg, st, metrics, events, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, metrics, h, academics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		logr.Warn("event queue shutdown", zap.Error(err))
	}
	return nil
}

func buildHandlers(cfg *config.Config, st *stores, metrics *service.MetricsService, events *service.EventService, logr *zap.Logger) (handlers, bool) {
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(st.cache, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	catalog := service.NewCatalogService(st.batches, st.student, cacheSvc, cfg.Catalog.CacheTTL, logr)
	registrations := service.NewRegistrationService(service.RegistrationServiceParams{
		Catalog:   catalog,
		Students:  st.student,
		Wizards:   st.wizards,
		Gateway:   service.NewMockPaymentGateway(cfg.Payment.Delay, logr),
		Events:    events,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Currency:  cfg.Payment.Currency,
	})
	students := service.NewStudentService(st.student, validate, logr)

	h := handlers{
		batches:       handler.NewBatchHandler(catalog),
		registrations: handler.NewRegistrationHandler(registrations),
		metrics:       handler.NewMetricsHandler(metrics, st.readinessChecks()),
	}
	if cfg.Exports.Enabled {
		h.students = handler.NewStudentHandler(students, service.NewExportService(st.student, logr, nil, nil))
	} else {
		h.students = handler.NewStudentHandler(students, nil)
	}

	academics := cfg.Academics.Enabled && st.db != nil
	if cfg.Academics.Enabled && st.db == nil {
		logr.Warn("academics tracking needs a SQL store, leaving it disabled", zap.String("driver", cfg.Store.Driver))
	}
	if academics {
		h.academics = handler.NewAcademicsHandler(
			service.NewAttendanceService(repository.NewAttendanceRepository(st.db), students, validate, logr),
			service.NewProgressService(repository.NewProgressRepository(st.db), students, validate, logr),
		)
	}
	return h, academics
}
