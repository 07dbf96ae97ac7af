package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/umar/nexttalk-dash/internal/api"
	"github.com/umar/nexttalk-dash/internal/dashboard"
	"github.com/umar/nexttalk-dash/internal/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dash:", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	// The terminal owns stdout, so logs go to a file.
	var logOut io.Writer = io.Discard
	if config.LogFile != "" {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(config.APIBaseURL, config.RequestTimeout, api.WithToken(config.APIToken))
	session := resolveSession(ctx, client, config)
	slog.Info("dashboard starting", "api", client.BaseURL(), "viewer", session.UserID)

	view := term.New(os.Stdout, config.ViewHeight, !config.NoColor)
	app := dashboard.NewApp(client, view, session, dashboard.Options{
		PollInterval: config.PollInterval,
		SplashDelay:  config.SplashDelay,
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.Live {
		liveURL, err := client.LiveURL()
		if err != nil {
			return fmt.Errorf("invalid live url: %w", err)
		}
		go func() {
			_ = dashboard.NewLiveFeed(liveURL, logger).Run(ctx, app.Notify)
		}()
	}

	go func() {
		if err := term.NewInput(view, app).Run(ctx, os.Stdin); err != nil {
			slog.Error("input failed", "error", err)
		}
		cancel()
	}()

	err := app.Run(ctx)
	fmt.Fprintln(os.Stdout)
	slog.Info("dashboard stopped")
	return err
}

// resolveSession asks the backend who the token belongs to and falls back
// to the configured viewer. The lookup gets its own short deadline so an
// unreachable backend does not hold up the splash.
func resolveSession(ctx context.Context, client *api.Client, config Config) dashboard.Session {
	session := dashboard.Session{
		UserID:   config.ViewerID,
		Username: config.ViewerName,
		Token:    config.APIToken,
	}
	ctx, cancel := context.WithTimeout(ctx, config.IdentityTimeout)
	defer cancel()
	me, err := client.Me(ctx)
	if err != nil {
		slog.Warn("could not resolve viewer, using configured identity", "error", err)
		return session
	}
	session.UserID = me.ID
	session.Username = me.Username
	return session
}
