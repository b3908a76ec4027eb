// Package main generates images for every recipe in the catalog that does not
// have one yet, then exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/container"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("RECIPEBOOK_CONFIG_FILE"), "configuration file path")
	placeholders := flag.Bool("placeholder", false, "use placeholder images instead of calling the image API")
	flag.Parse()

	os.Exit(run(*configPath, *placeholders))
}

func run(configPath string, placeholders bool) int {
	var (
		catalog inbound.RecipeService
		images  inbound.ImageService
		log     *zap.Logger
	)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(configPath)),
		container.CoreModule,
		fx.Populate(&catalog, &images, &log),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		return 2
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	loaded, err := catalog.Load(ctx)
	if err != nil {
		log.Error("Failed to load catalog", zap.Error(err))
		return 1
	}
	log.Info("Catalog loaded", zap.Int("recipes", loaded.RecipeCount), zap.Int("skipped", loaded.Skipped))

	result, err := images.GenerateAll(ctx, placeholders)
	if err != nil {
		log.Error("Batch generation failed", zap.Error(err))
		return 1
	}

	log.Info("Batch generation finished",
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", result.Skipped),
	)
	return 0
}
