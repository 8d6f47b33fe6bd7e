package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ErlanBelekov/auth-service/config"
	"github.com/ErlanBelekov/auth-service/internal/email"
	"github.com/ErlanBelekov/auth-service/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/auth-service/internal/infrastructure/redis"
	"github.com/ErlanBelekov/auth-service/internal/password"
	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/ErlanBelekov/auth-service/internal/usecase"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Operator tooling for the auth service",
		Long: `authctl runs schema migrations, clears login lockouts and seeds users.
It reads the same environment (and optional .env) as the server.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewUnlockCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}

func newLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: level}))
}

// authDeps holds a fully wired usecase plus the connections behind it.
type authDeps struct {
	usecase *usecase.AuthUsecase
	close   func()
}

func openAuthDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*authDeps, error) {
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: cfg.DatabaseURL, MaxConns: 2, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb, err := redis.NewClient(ctx, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	uc := usecase.NewAuthUsecase(
		postgres.NewUserRepository(pool),
		redis.NewAttemptCounter(rdb, usecase.LoginBlockTime),
		password.NewBcryptHasher(),
		token.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL),
		email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger),
		logger,
	)

	return &authDeps{
		usecase: uc,
		close: func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
			pool.Close()
		},
	}, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
