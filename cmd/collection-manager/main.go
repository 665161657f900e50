package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/your-org/identity-vault/internal/bootstrap"
	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/observability"
)

// Invoked directly with {"action", "bucket", "photo", "name"}.
func main() {
	cfg, err := config.Load(os.Getenv("VAULT_CONFIG"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	app, err := bootstrap.New(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		slog.Error("bootstrap collection-manager", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	lambda.Start(app.CollectionHandler().Handle)
}
