package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Isaac-1-lang/Ecommerce/internal/config"
	"github.com/Isaac-1-lang/Ecommerce/internal/database"
	"github.com/Isaac-1-lang/Ecommerce/internal/di"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, cleanup, err := di.InitializeApplication(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize application:", err)
		os.Exit(1)
	}
	defer cleanup()

	app.Logger.Info("Starting Storefront Session API",
		"version", di.Version,
		"env", cfg.Server.Env,
		"storage", cfg.Database.Driver,
		"sessionStore", cfg.Auth.SessionStore,
	)

	if app.DB != nil {
		if err := database.RunMigrations(app.DB, cfg.Database.MigrationsPath, app.Logger); err != nil {
			app.Logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	app.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Server.Start()
	})

	app.Sweeper.Start(gctx)

	g.Go(func() error {
		<-gctx.Done()
		app.Sweeper.Stop()
		if err := app.Server.Shutdown(); err != nil {
			app.Logger.Error("Server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error("Server error", "error", err)
		cleanup()
		os.Exit(1)
	}

	app.Logger.Info("Server stopped")
}
