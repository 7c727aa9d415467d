package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/admin"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/audit"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/config"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/database"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/feeding"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/inventory"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/supplier"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}

	rdb, err := database.OpenRedis(context.Background(), cfg)
	if err != nil {
		logger.WithError(err).Fatal("redis connection failed")
	}

	var locker ledger.Locker
	if rdb != nil {
		locker = ledger.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait, logger)
	} else {
		locker = ledger.NewLocalLocker(cfg.LockWait)
	}

	ldg := ledger.New(ledger.NewGormStore(db), locker, ledger.Options{
		MaxRetries: cfg.LedgerMaxRetries,
		Logger:     logger,
	})
	auditWriter := audit.NewWriter(db, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(utils.RequestLogger(logger))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Idempotent-Replayed",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler(db))

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/farms", admin.CreateFarmHandler(db))
	adminRoutes.Get("/farms", admin.ListFarmsHandler(db))
	adminRoutes.Get("/farms/:id", admin.GetFarmHandler(db))
	adminRoutes.Put("/farms/:id", admin.UpdateFarmHandler(db))
	adminRoutes.Delete("/farms/:id", admin.DeleteFarmHandler(db))
	adminRoutes.Post("/farms/:id/managers", admin.CreateFarmManagerHandler(db))
	adminRoutes.Get("/farms/:id/managers", admin.ListFarmManagersHandler(db))

	// Farm scoped
	farm := protected.Group("/farms/:farmId")
	farm.Use(auth.RequireFarmAccess(auth.GormFarmExists(db)))

	inv := &inventory.Handlers{
		Ledger:    ldg,
		Audit:     auditWriter,
		Suppliers: supplier.Exists(db),
		Logger:    logger,
	}
	if rdb != nil {
		inv.Idempotency = inventory.NewRedisIdempotency(rdb, cfg.IdempotencyTTL)
	}
	inv.Register(farm.Group("/inventory"))

	feed := &feeding.Handlers{
		Service: feeding.NewService(ldg, feeding.NewGormRepository(db)),
		Audit:   auditWriter,
		Logger:  logger,
	}
	feed.Register(farm.Group("/feeding-records"))

	farm.Post("/suppliers", supplier.CreateSupplierHandler(db, auditWriter))
	farm.Get("/suppliers", supplier.ListSuppliersHandler(db))
	farm.Put("/suppliers/:id", supplier.UpdateSupplierHandler(db, auditWriter))
	farm.Delete("/suppliers/:id", supplier.DeleteSupplierHandler(db, auditWriter))

	farm.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithField("port", cfg.HTTPPort).Info("server starting")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
