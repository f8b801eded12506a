// Command storefront serves the catalog, order and account API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/pkg/di"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to a yaml, json or toml config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	logger := container.Logger()

	runErr := container.Server().Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := container.Close(closeCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
	if runErr != nil {
		return runErr
	}
	logger.Info().Msg("storefront stopped")
	return nil
}
