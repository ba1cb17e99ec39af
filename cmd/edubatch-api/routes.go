package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/handler"
	"github.com/noah-isme/edubatch-api/internal/middleware"
	"github.com/noah-isme/edubatch-api/internal/service"
	"github.com/noah-isme/edubatch-api/pkg/config"
	"github.com/noah-isme/edubatch-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edubatch-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edubatch-api/pkg/middleware/requestid"
)

type handlers struct {
	batches       *handler.BatchHandler
	registrations *handler.RegistrationHandler
	students      *handler.StudentHandler
	academics     *handler.AcademicsHandler
	metrics       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h handlers, academics bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.GET("/metrics/summary", h.metrics.Summary)

	api.GET("/batches", h.batches.List)
	api.GET("/batches/:type", h.batches.Get)

	regs := api.Group("/registrations")
	regs.POST("", h.registrations.Start)
	regs.GET("/:id", h.registrations.Get)
	regs.POST("/:id/continue", h.registrations.Continue)
	regs.POST("/:id/submit", h.registrations.Submit)
	regs.POST("/:id/pay", h.registrations.Pay)
	regs.DELETE("/:id", h.registrations.Abandon)

	students := api.Group("/students")
	students.GET("", h.students.List)
	students.GET("/exists", h.students.Exists)
	students.GET("/export", middleware.FeatureGate(cfg.Exports.Enabled, "roster export"), h.students.Export)
	students.GET("/:id", h.students.Get)

	gate := middleware.FeatureGate(academics, "academics tracking")
	api.POST("/attendance", gate, h.academics.MarkAttendance)
	students.GET("/:id/attendance", gate, h.academics.AttendanceHistory)
	students.POST("/:id/progress", gate, h.academics.RecordProgress)
	students.GET("/:id/progress", gate, h.academics.ListProgress)

	return r
}
