package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/identity-vault/internal/api"
	"github.com/your-org/identity-vault/internal/api/handlers"
	"github.com/your-org/identity-vault/internal/api/ws"
	"github.com/your-org/identity-vault/internal/bootstrap"
	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/observability"
	"github.com/your-org/identity-vault/internal/queue"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting identity-vault gateway",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"images", cfg.Images.Source,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{WithStore: true})
	if err != nil {
		slog.Error("bootstrap gateway", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	hub := ws.NewHub()
	go hub.Run(ctx)

	checks := map[string]handlers.Check{
		"store": app.Store.Ping,
	}
	if app.MinIO != nil {
		checks["minio"] = app.MinIO.Ping
	}

	// Live feed: everything the upload handlers publish goes to WebSocket clients.
	if app.Publisher != nil {
		checks["nats"] = func(context.Context) error { return app.Publisher.Ping() }

		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create record consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		err = consumer.ConsumeRecords(ctx, "gateway-live-feed", func(_ context.Context, msg jetstream.Msg) error {
			hub.Broadcast(msg.Data())
			return nil
		})
		if err != nil {
			slog.Warn("start record consumer", "error", err)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		APIKey:        cfg.Server.APIKey,
		Hub:           hub,
		Labels:        app.LabelsHandler(),
		Access:        app.BiometricHandler(),
		Compare:       app.CompareHandler(),
		Collection:    app.CollectionHandler(),
		Checks:        checks,
		InvokeTimeout: cfg.Server.InvokeTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gateway...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("gateway stopped")
}
