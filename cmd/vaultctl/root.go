package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/your-org/identity-vault/internal/bootstrap"
	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/observability"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Run identity-vault handlers from the command line",
	Long: `vaultctl builds the same handlers the Lambda functions run and invokes
them once against the configured recognition service and record store.
The JSON result is printed to stdout.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (environment only when empty)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadApp logs to the command's stderr; stdout carries only the JSON result.
func loadApp(cmd *cobra.Command, withStore bool) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(observability.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, "text"))

	return bootstrap.New(cmd.Context(), cfg, bootstrap.Options{WithStore: withStore})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
