// Command session-monitor logs in against a running API and follows the
// session until it expires, fails to refresh, or Ctrl-C logs it out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/Isaac-1-lang/Ecommerce/internal/sessionclient"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", envOr("SESSION_API_URL", "http://localhost:5000"), "API base URL")
	email := flag.String("email", os.Getenv("SESSION_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("SESSION_PASSWORD"), "account password")
	threshold := flag.Duration("refresh-threshold", sessionclient.DefaultRefreshThreshold, "refresh when this much time is left")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.Kitchen}))

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required (flags or SESSION_EMAIL / SESSION_PASSWORD)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := sessionclient.NewClient(sessionclient.Config{BaseURL: *baseURL})

	grant, err := client.Login(ctx, *email, *password)
	if err != nil {
		logger.Error("Login failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Logged in", "role", grant.Role, "expiresAt", grant.ExpiresAt.Format(time.RFC3339))

	ended := make(chan sessionclient.EndReason, 1)
	monitor := sessionclient.NewMonitor(sessionclient.MonitorConfig{
		API:              client,
		RefreshThreshold: *threshold,
		Logger:           logger,
		OnTick: func(remaining time.Duration) {
			fmt.Printf("\rsession expires in %s   ", remaining.Truncate(time.Second))
		},
		OnRefresh: func(result sessionclient.RefreshResult) {
			fmt.Println()
			logger.Info(result.Message, "rotated", result.Rotated, "expiresAt", result.ExpiresAt.Format(time.RFC3339))
		},
		OnEnd: func(reason sessionclient.EndReason, err error) {
			ended <- reason
		},
	})

	// The monitor gets its own context so Ctrl-C can still log out.
	if err := monitor.Start(context.Background(), *grant); err != nil {
		logger.Error("Failed to start monitor", "error", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		fmt.Println()
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := monitor.Logout(logoutCtx); err != nil {
			logger.Warn("Logout failed", "error", err)
		}
		logger.Info("Logged out")
	case reason := <-ended:
		fmt.Println()
		logger.Warn("Session ended", "reason", reason)
		if reason != sessionclient.EndStopped {
			os.Exit(1)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
