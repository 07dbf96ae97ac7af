package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/umar/nexttalk-dash/internal/chat"
	"github.com/umar/nexttalk-dash/internal/database"
	"github.com/umar/nexttalk-dash/internal/handlers"
	"github.com/umar/nexttalk-dash/internal/middleware"
	"github.com/umar/nexttalk-dash/internal/models"
	redisc "github.com/umar/nexttalk-dash/internal/redis"
	"github.com/umar/nexttalk-dash/internal/summary"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)}))
	slog.SetDefault(logger)

	slog.Info("starting chat dashboard API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var store database.Store
	if config.DatabaseURL != "" {
		db, err := database.InitDB(ctx, config.DatabaseURL)
		if err != nil {
			return err
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("connected to PostgreSQL, migrations complete")
		store = database.NewPostgres(db)
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store = database.NewMemory()
	}
	defer store.Close()

	if config.SeedDemoData {
		seeded, err := store.Seed(ctx, database.DemoData(time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		if seeded {
			slog.Info("demo data seeded")
		}
	}

	// Live events: local hub, fanned out through Redis when configured.
	var (
		hub       *chat.Hub
		publisher chat.Publisher
	)
	if config.RedisURL != "" {
		redisClient, err := redisc.Connect(ctx, redisc.Config{URL: config.RedisURL})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		slog.Info("connected to Redis")

		hub = chat.NewHub(redisc.NewPresence(redisClient))
		publisher = redisc.NewRoomPublisher(redisClient)
		go redisc.SubscribeRooms(ctx, redisClient, hub.BroadcastToRoom)
	} else {
		hub = chat.NewHub(nil)
		publisher = hub
	}
	go hub.Run(ctx)

	router := handlers.NewRouter(handlers.Deps{
		Store:       store,
		Summarizer:  summary.NewGenerator(store),
		Publisher:   publisher,
		Online:      hub,
		Hub:         hub,
		JWTSecret:   config.JWTSecret,
		TokenTTL:    config.TokenTTL,
		Viewer:      models.User{ID: config.ViewerID, Username: config.ViewerName},
		CORSOrigins: middleware.ParseOrigins(config.CORSOrigins),
		RateLimiter: middleware.NewRateLimiter(config.WriteRateLimit, config.WriteBurst),
	})

	address := fmt.Sprintf(":%d", config.Port)
	srv := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
