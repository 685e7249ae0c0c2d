package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/lostfound/internal/bootstrap"
	"anoa.com/lostfound/internal/config"
	"anoa.com/lostfound/internal/server"
	"anoa.com/lostfound/pkg/database"
	"anoa.com/lostfound/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			zl.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	redisClient := connectRedis(cfg.RedisURL, zl)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := server.NewServer(cfg, db, redisClient)

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.Run(":" + cfg.Port); err != nil {
			zl.Fatal("server exited with error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func connectRedis(redisURL string, zl *zap.Logger) *redis.Client {
	if redisURL == "" {
		zl.Info("REDIS_URL not set, unread cache and challenge cooldown disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		zl.Warn("invalid REDIS_URL, unread cache and challenge cooldown disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zl.Warn("redis unreachable, unread cache and challenge cooldown disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
