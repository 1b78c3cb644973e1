package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civiclens-be/config"
	"civiclens-be/repository"
	"civiclens-be/seed"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

const stateExpiry = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	config.SetupLogger(cfg.LogLevel)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, mongoClient, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store initialisation failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	if cfg.SeedData {
		if _, err := seed.IssueTypes(ctx, store.IssueTypes); err != nil {
			slog.Error("seeding issue types failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := config.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		slog.Warn("redis unavailable", "error", err)
	}
	if redisClient == nil {
		slog.Warn("issue rate limiting disabled")
	}

	router, err := buildRouter(cfg, store, redisClient)
	if err != nil {
		slog.Error("router initialisation failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			slog.Error("mongodb disconnect error", "error", err)
		}
	}
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, *mongo.Client, error) {
	if cfg.StoreDriver == "memory" {
		slog.Warn("using in-memory store, data is not persisted")
		return repository.NewMemoryStore(), nil, nil
	}

	client, db, err := config.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return repository.NewMongoStore(db), client, nil
}
