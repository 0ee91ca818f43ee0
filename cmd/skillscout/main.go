// Package main provides the skillscout operator CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/app"
	"alfredoptarigan/skill-scout/internal/config"
	"alfredoptarigan/skill-scout/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "skillscout",
	Short:         "Skill Scout position ingestion and matching",
	Long:          "Ingests position status spreadsheets and statements of work, and ranks candidates against open positions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap connects to the database and wires the services. The returned
// cleanup flushes the logger.
func bootstrap(ctx context.Context) (*app.Container, *zap.Logger, func(), error) {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	cleanup := func() { _ = zl.Sync() }

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	container, err := app.New(ctx, cfg, db, zl)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return container, zl, cleanup, nil
}
