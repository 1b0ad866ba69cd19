// @title                       AutoResolve Helpdesk Accounts API
// @version                     1.0.0
// @description                 Registration, login and self-service profile for helpdesk users.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/rs/zerolog"

	"github.com/autoresolve/helpdesk-accounts/internal/api"
	"github.com/autoresolve/helpdesk-accounts/internal/api/handler"
	"github.com/autoresolve/helpdesk-accounts/internal/api/metrics"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
	"github.com/autoresolve/helpdesk-accounts/internal/core/service"
	mongostore "github.com/autoresolve/helpdesk-accounts/internal/infrastructure/db/mongo"
	redisstore "github.com/autoresolve/helpdesk-accounts/internal/infrastructure/db/redis"
	"github.com/autoresolve/helpdesk-accounts/internal/infrastructure/db/relational"
	"github.com/autoresolve/helpdesk-accounts/internal/infrastructure/password"
	"github.com/autoresolve/helpdesk-accounts/internal/infrastructure/token"
	"github.com/autoresolve/helpdesk-accounts/internal/pkg/config"
	"github.com/autoresolve/helpdesk-accounts/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "helpdesk-accounts: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "helpdesk-accounts",
		Version: cfg.Version,
	})

	users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		limiter service.LoginLimiter
		pingers = map[string]handler.Pinger{}
	)
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		l := redisstore.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockoutWindow)
		limiter = l
		pingers["redis"] = l
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login limiter enabled")
	}

	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	accounts := service.NewAccountService(users, metrics.InstrumentHasher(hasher), tokens, limiter, log)

	e := api.NewRouter(api.Deps{
		Accounts:      accounts,
		Verifier:      tokens,
		Users:         users,
		Pingers:       pingers,
		Version:       cfg.Version,
		Development:   cfg.IsDevelopment(),
		AuthRateLimit: cfg.Auth.AuthRateLimit,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured user store and returns a close func.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Store.MongoURI, Database: cfg.Store.MongoDB})
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = mongostore.Disconnect(ctx, client)
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Store.MongoDB).Msg("mongo store ready")
		return repo, func() { _ = mongostore.Disconnect(context.Background(), client) }, nil

	default:
		db, err := relational.Open(ctx, relational.Config{
			Driver:     cfg.Store.Driver,
			DSN:        cfg.Store.DatabaseURL,
			SQLitePath: cfg.Store.SQLitePath,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return relational.NewUserRepository(db, 5*time.Second), func() { _ = relational.Close(db) }, nil
	}
}
