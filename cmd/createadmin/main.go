package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go-derma/internal/app"
	"go-derma/internal/bootstrap"
	"go-derma/internal/config"
	"go-derma/internal/shared/connection"
	"go-derma/internal/user"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// createadmin -email admin@derma.io -name Admin
// Password dibaca dari ADMIN_PASSWORD supaya tidak tersimpan di shell history.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	name := flag.String("name", os.Getenv("ADMIN_NAME"), "admin display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := bootstrap.Migrate(ctx, gormDB); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
	}

	resp, err := app.CreateAdmin(ctx, user.NewRepository(gormDB), app.AdminInput{
		Email:    *email,
		Password: os.Getenv("ADMIN_PASSWORD"),
		Name:     *name,
	})
	if err != nil {
		logger.Fatal("create admin failed", zap.Error(err))
	}

	logger.Info("admin ready", zap.String("id", resp.ID), zap.String("email", resp.Email))
}
