package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/form"
	"go-pos-inventory/internal/handler"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/cache"
	"go-pos-inventory/pkg/database"
	applog "go-pos-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.Load()
	log := applog.New(cfg.LogLevel)
	if envErr != nil {
		log.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Redis for the master key attempt limiter (optional)
	redisClient := cache.Connect(rootCtx, cfg.RedisAddr, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	settingRepo := repository.NewSettingRepo(db)
	secretRepo := repository.NewSecretRepo(db)

	flagProvider := flags.NewProvider(settingRepo, log)

	var counter service.AttemptCounter
	if redisClient != nil {
		counter = service.NewRedisCounter(redisClient)
	}
	limiter := service.NewAttemptLimiter(counter, cfg.KeyMaxAttempts, cfg.KeyAttemptsWindow, log)

	invService := service.NewInventoryService(productRepo, supplierRepo, wsHub)
	dashService := service.NewDashboardService(productRepo, flagProvider)
	keyService := service.NewStockKeyService(secretRepo, limiter)

	registry := form.NewRegistry()
	go sweepSessions(rootCtx, registry, cfg.SessionIdleTTL, log)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Inventory v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.RegisterRoutes(app.Group("/api/v1"), handler.Handlers{
		Inventory: handler.NewInventoryHandler(invService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Form:      handler.NewFormHandler(registry, invService, flagProvider, keyService, cfg.NoticeTTL, log),
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Server exited")
}

const minSweepInterval = time.Second

// sweepInterval checks twice per idle period, but never more than once a second.
func sweepInterval(idle time.Duration) time.Duration {
	if every := idle / 2; every > minSweepInterval {
		return every
	}
	return minSweepInterval
}

// sweepSessions closes form sessions nobody touched for idle.
func sweepSessions(ctx context.Context, registry *form.Registry, idle time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(sweepInterval(idle))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Sweep(now, idle); n > 0 {
				log.WithField("closed", n).Info("Closed idle product form sessions")
			}
		}
	}
}
