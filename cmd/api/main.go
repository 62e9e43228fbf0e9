package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/jobs"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/routes"
	"github.com/BruksfildServices01/salon-booking/internal/telemetry"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
)

const serviceName = "salon-booking"

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).With("service", serviceName)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grid, err := cfg.Grid()
	if err != nil {
		return err
	}

	// ======================================================
	// TELEMETRY
	// ======================================================
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}

	// ======================================================
	// INFRA
	// ======================================================
	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		return err
	}

	repo := infraRepo.NewAppointmentGormRepository(db, cfg.LockTimeout())

	var gridCache ucAppointment.GridCache
	if rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger); rdb != nil {
		defer rdb.Close()
		gridCache = cache.NewGridCache(rdb, cfg.GridCacheTTL, logger)
	}

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.RabbitMQURL != "" {
		amqpSender := notify.NewAMQPSender(cfg.RabbitMQURL, cfg.NotifyQueue)
		defer amqpSender.Close()
		sender = amqpSender
	}
	notifier := notify.NewDispatcher(sender, logger)
	auditor := audit.NewDispatcher(audit.New(db), logger)

	clock := timezone.NewClock(cfg.Location())

	// ======================================================
	// HTTP
	// ======================================================
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	sweep := routes.RegisterRoutes(r, cfg, routes.Deps{
		DB:   db,
		Repo: repo,
		Policy: ucAppointment.Policy{
			Clock:     clock,
			Buffer:    cfg.BookingBuffer,
			TxTimeout: cfg.BookingTxTimeout,
			Grid:      grid,
		},
		Cache:  gridCache,
		Audit:  auditor,
		Notify: notifier,
		Clock:  clock,
		Logger: logger,
	})

	scheduler, err := jobs.NewScheduler(cfg.SweepCron, sweep, time.Minute, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Addr(), "timezone", cfg.Timezone)
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

	// ======================================================
	// SHUTDOWN
	// ======================================================
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
	scheduler.Stop(shutdownCtx)
	notifier.Close()
	auditor.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
