package app

import (
	"context"
	"net/http"
	"time"

	"go-derma/internal/bootstrap"
	"go-derma/internal/config"
	"go-derma/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure, migrates when enabled and mounts
// every module on router. The returned cleanup closes the connections.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := bootstrap.Migrate(ctx, gormDB); err != nil {
			return nil, err
		}
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.MaxRetries)
	if err != nil {
		return nil, err
	}

	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	router.GET("/healthz", healthz(gormDB, redisClient))

	// 2. Register Modules & Routes
	if err := registerModules(ctx, router, cfg, gormDB, redisClient); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}

func healthz(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "down"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{"ok": code == http.StatusOK, "data": status})
	}
}
