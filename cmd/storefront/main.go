package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	cartapp "github.com/econext/storefront/internal/cart/app"
	catalogapp "github.com/econext/storefront/internal/catalog/app"
	checkoutapp "github.com/econext/storefront/internal/checkout/app"
	"github.com/econext/storefront/internal/checkout/infra/adapter"
	"github.com/econext/storefront/internal/commerce"
	"github.com/econext/storefront/internal/gateway"
	sessionapp "github.com/econext/storefront/internal/session/app"
	redisstore "github.com/econext/storefront/internal/session/infra/redis"
	sqlitestore "github.com/econext/storefront/internal/session/infra/sqlite"
	"github.com/econext/storefront/pkg/config"
	"github.com/econext/storefront/pkg/logger"
	"github.com/econext/storefront/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	creds, closeCreds, err := openCredentialStore(cfg)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer closeCreds()

	sessions := sessionapp.NewStore(creds)
	if sess := sessions.Hydrate(ctx); sess.Authenticated() {
		log.Info("session restored", slog.String("username", sess.User.Username))
	}

	cartEngine := cartapp.NewEngine()
	client := commerce.NewClient(cfg.CommerceAPIURL, cfg.Currency, sessions.AccessToken)
	catalogSvc := catalogapp.NewService(client)
	checkoutSvc := checkoutapp.NewService(sessions, cartEngine, adapter.NewCommerceOrderPlacer(client), client)

	srv := gateway.New(log, sessions, cartEngine, client, catalogSvc, checkoutSvc)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: srv.Router(cfg.AllowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.Int("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// openCredentialStore prefers Redis when configured; the SQLite file
// is the single-machine default.
func openCredentialStore(cfg config.Config) (sessionapp.CredentialStore, func(), error) {
	if cfg.RedisURL != "" {
		s, err := redisstore.Open(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	s, err := sqlitestore.Open(cfg.CredentialDBPath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
