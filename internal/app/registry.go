package app

import (
	"context"

	"go-derma/internal/auth"
	"go-derma/internal/config"
	"go-derma/internal/invoice"
	"go-derma/internal/messaging/outbox"
	"go-derma/internal/middleware"
	"go-derma/internal/punch"
	"go-derma/internal/rbac"
	"go-derma/internal/rbac/infra"
	"go-derma/internal/report"
	"go-derma/internal/shared/counter"
	"go-derma/internal/shared/token"
	"go-derma/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	invoiceRepo := invoice.NewRepository(gormDB)
	punchRepo := punch.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := outbox.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(ctx); err != nil {
		return err
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// --- Services ---
	punchService := punch.NewService(gormDB, punchRepo, userRepo, outboxRepo, punch.Options{
		OncePerDay:   cfg.Punch.OncePerDay,
		MinShift:     cfg.Punch.MinShift,
		MaxBreak:     cfg.Punch.MaxBreak,
		RecentWindow: cfg.Punch.RecentWindow,
		Location:     cfg.Location,
	}, logger)
	authService := auth.NewService(userRepo, tokens, punchService, logger)
	userService := user.NewService(gormDB, userRepo, outboxRepo, logger)
	invoiceService := invoice.NewService(gormDB, invoiceRepo, userRepo, counterRepo, outboxRepo, rdb, logger)
	reportService := report.NewService(userRepo, invoiceRepo, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	userHandler := user.NewHandler(userService, logger)
	invoiceHandler := invoice.NewHandler(invoiceService, logger)
	punchHandler := punch.NewHandler(punchService, logger)
	reportHandler := report.NewHandler(reportService, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	router.Use(middleware.ContextLogger(logger))
	authMW := middleware.AuthMiddleware(tokens)

	api := router.Group("/api")
	users := api.Group("/users")
	usersAuthed := users.Group("", authMW)
	admin := api.Group("/admin", authMW, middleware.RoleMiddleware(rbac.RoleAdmin))
	{
		auth.RegisterRoutes(users, authHandler, authMW)
		invoice.RegisterRoutes(usersAuthed, admin, invoiceHandler, rbacService, rdb)
		punch.RegisterRoutes(usersAuthed, admin, punchHandler, rbacService)
		user.RegisterRoutes(admin, userHandler, rbacService)
		report.RegisterRoutes(admin, reportHandler, rbacService)
		rbac.RegisterRoutes(admin, rbacHandler, rbacService)
	}

	return nil
}
