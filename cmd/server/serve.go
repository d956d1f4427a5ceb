package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/application"
	"github.com/transport-ledger/service-transport/internal/common/database"
	"github.com/transport-ledger/service-transport/internal/common/health"
	"github.com/transport-ledger/service-transport/internal/common/kafka"
	"github.com/transport-ledger/service-transport/internal/common/logger"
	"github.com/transport-ledger/service-transport/internal/common/middleware"
	"github.com/transport-ledger/service-transport/internal/config"
	"github.com/transport-ledger/service-transport/internal/events"
	"github.com/transport-ledger/service-transport/internal/geo"
	"github.com/transport-ledger/service-transport/internal/handler"
	"github.com/transport-ledger/service-transport/internal/repository"
)

const banner = "Transport API is running!"

// routeRegistrar is implemented by every HTTP handler.
type routeRegistrar interface {
	RegisterRoutes(r *gin.RouterGroup)
}

func setup() (*config.ServiceConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("geo_provider", cfg.GeoConfig.Provider),
		zap.String("amount_policy", cfg.AmountPolicy.String()),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return err
	}

	if cfg.IsDevelopment() {
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Event publishing is optional
	var publisher application.EventPublisher = application.NopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Info("no kafka brokers configured, record events disabled")
	}

	resolver, err := geo.NewResolverFromConfig(cfg.GeoConfig, log.Named("geo"))
	if err != nil {
		return fmt.Errorf("failed to configure geo provider: %w", err)
	}

	transportRepo := repository.NewGormTransportRepository(db)
	transportService := application.NewTransportService(
		transportRepo,
		cfg.AmountPolicy,
		publisher,
		cfg.KafkaConfig.Topic,
		log,
	)
	draftService := application.NewDraftService(resolver, transportService, cfg.DraftTTL, log.Named("drafts"))
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go draftService.RunJanitor(janitorCtx, cfg.DraftTTL/2)
	geoService := application.NewGeoService(resolver)

	healthHandler, err := health.NewGormHandler(db, serviceName)
	if err != nil {
		return err
	}

	router := newRouter(log, cfg.CORSOrigins, healthHandler,
		handler.NewTransportHandler(transportService),
		handler.NewDraftHandler(draftService),
		handler.NewGeoHandler(geoService),
	)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("shutting down " + serviceName + "...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
	return nil
}

func newRouter(log *zap.Logger, origins []string, healthHandler *health.Handler, handlers ...routeRegistrar) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(origins))
	router.Use(middleware.SecurityHeadersMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})
	healthHandler.RegisterRoutes(router)

	for _, h := range handlers {
		h.RegisterRoutes(&router.RouterGroup)
	}
	return router
}

func runMigrate(rollback bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return err
	}
	if rollback {
		if err := repository.RollbackLast(db); err != nil {
			return fmt.Errorf("rollback database: %w", err)
		}
		log.Info("rolled back last migration")
		return nil
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Info("database migrations applied")
	return nil
}

func runEvents(ctx context.Context, group string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.KafkaConfig.Enabled() {
		return errors.New("TRANSPORT_KAFKA_BROKERS is not set")
	}

	consumer := events.NewRecordEventConsumer(cfg.KafkaConfig.Brokers, group, cfg.KafkaConfig.Topic, log)
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("tailing record events", zap.String("topic", cfg.KafkaConfig.Topic), zap.String("group", group))
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("record event consumer: %w", err)
	}
	return nil
}
