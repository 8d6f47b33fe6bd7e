package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/auth-service/config"
	"github.com/ErlanBelekov/auth-service/internal/email"
	"github.com/ErlanBelekov/auth-service/internal/health"
	"github.com/ErlanBelekov/auth-service/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/auth-service/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/auth-service/internal/log"
	"github.com/ErlanBelekov/auth-service/internal/metrics"
	"github.com/ErlanBelekov/auth-service/internal/monitor"
	"github.com/ErlanBelekov/auth-service/internal/password"
	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/ErlanBelekov/auth-service/internal/tracing"
	httptransport "github.com/ErlanBelekov/auth-service/internal/transport/http"
	"github.com/ErlanBelekov/auth-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/auth-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	shutdownTracing := tracing.Setup(cfg.Env)

	if cfg.AutoMigrate {
		if err := migrate(cfg.DatabaseURL, logger); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: cfg.DatabaseURL})
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	attempts := redis.NewAttemptCounter(rdb, usecase.LoginBlockTime)
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)
	authUsecase := usecase.NewAuthUsecase(
		userRepo,
		attempts,
		password.NewBcryptHasher(),
		issuer,
		email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger),
		logger,
	)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer,
		health.Dependency{Name: "postgres", Pinger: pool},
		health.Dependency{Name: "redis", Pinger: rdb},
	)

	sampler, err := monitor.NewLockoutSampler(
		attempts,
		usecase.LoginAttemptsKey("*"),
		usecase.MaxLoginAttempts,
		cfg.LockoutSampleSchedule,
		metrics.LockedEmails,
		logger,
	)
	if err != nil {
		stop()
		log.Fatalf("lockout sampler: %v", err)
	}
	samplerDone := make(chan struct{})
	go func() {
		sampler.Start(ctx)
		close(samplerDone)
	}()

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, issuer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err)
	}
	<-samplerDone
}

func migrate(databaseURL string, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("schema migrated", "version", version)
	return nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
