// Package server assembles the application and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/api"
	"github.com/lvndry/clausea-backend/internal/catalog"
	"github.com/lvndry/clausea-backend/internal/config"
	"github.com/lvndry/clausea-backend/internal/dashboard"
	"github.com/lvndry/clausea-backend/internal/email"
	"github.com/lvndry/clausea-backend/internal/id/uuid"
	"github.com/lvndry/clausea-backend/internal/metrics"
	"github.com/lvndry/clausea-backend/internal/retry"
	mongostore "github.com/lvndry/clausea-backend/internal/storage/mongo"
)

// App contains the application's dependencies.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	client    *mongo.Client
	apiServer *api.Server
}

// NewApp connects the document store and wires every component.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	client, err := mongostore.Connect(ctx, cfg.DB.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DatabaseName())
	logger.Info("connected to document store", zap.String("database", cfg.DatabaseName()))

	store := mongostore.NewCatalogStore(db, logger)
	if err := store.EnsureIndexes(ctx); err != nil {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			logger.Warn("disconnect after index failure", zap.Error(disconnectErr))
		}
		return nil, err
	}

	service := catalog.NewService(store, store, logger)
	notifier := email.NewResendNotifier(email.Config{
		APIKey: cfg.Email.APIKey,
		From:   cfg.Email.From,
		To:     cfg.Email.To,
	}, logger)

	initial, maxBackoff := cfg.RetryBackoff()
	flow := dashboard.NewFlow(store, uuid.New(), retry.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: initial,
		MaxBackoff:     maxBackoff,
	}, logger)

	apiServer := api.NewServer(api.Options{
		Store:    store,
		Service:  service,
		Flow:     flow,
		Notifier: notifier,
		ReadyDB:  mongoPinger{client: client},
		Timeout:  cfg.RequestTimeout(),
		Logger:   logger,
	})

	return &App{cfg: cfg, logger: logger, client: client, apiServer: apiServer}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	return a.Close(shutdownCtx)
}

// Close releases the document store connection.
func (a *App) Close(ctx context.Context) error {
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			a.logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}

// mongoPinger adapts the mongo client to the readiness Pinger.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}
