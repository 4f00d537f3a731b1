package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/internal/config"
	"go-storefront/internal/events"
	"go-storefront/internal/handler"
	"go-storefront/internal/idempotency"
	"go-storefront/internal/kafka"
	"go-storefront/internal/metrics"
	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/service"
	"go-storefront/internal/ws"
	"go-storefront/pkg/database"
	"go-storefront/pkg/jwt"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/storage"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	zlog := logger.MustNew(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := db.AutoMigrate(model.All()...); err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}

	// 3. Event fan-out: WebSocket hub, plus Kafka when brokers are configured
	wsHub := ws.NewHub(zlog)
	go wsHub.Run(ctx)
	publishers := events.Multi{wsHub}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256, zlog)
		producer.Start(ctx)
		publishers = append(publishers, producer)
		zlog.Info("kafka producer started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	var idem service.IdempotencyStore
	if cfg.RedisAddr != "" {
		store := idempotency.NewStore(idempotency.NewClient(cfg.RedisAddr), idempotency.TTLIdempotency)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			zlog.Warn("redis unreachable, idempotency keys are best-effort", zap.Error(err))
		}
		cancel()
		idem = store
	}

	images, err := storage.NewLocalImageStore(cfg.UploadDir)
	if err != nil {
		zlog.Fatal("upload dir", zap.Error(err))
	}
	m := metrics.New("storefront")
	tokens := jwt.NewManager(cfg.JWT)

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	accountRepo := repository.NewAccountRepo(db)
	cartRepo := repository.NewCartRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)

	emitter := service.NewEmitter(publishers, cfg.ServiceName, zlog)
	ledger := service.NewInventoryLedger(productRepo, movementRepo, m)

	authService := service.NewAuthService(accountRepo, tokens, cfg.AdminSignupKey, zlog)
	accountService := service.NewAccountService(db, accountRepo, productRepo, cartRepo, images, zlog)
	catalogService := service.NewCatalogService(db, productRepo, cartRepo, movementRepo, ledger, images, emitter, zlog)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(db, ledger, orderRepo, cartRepo, emitter, idem, m, zlog)
	dashService := service.NewDashboardService(movementRepo, cfg.LowStockLimit)

	// 5. Seed bootstrap admin
	if err := authService.SeedAdmin(ctx, "Administrator", cfg.SeedAdminEmail, cfg.SeedAdminPass); err != nil {
		zlog.Warn("seed admin", zap.Error(err))
	}

	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure)
	handlers := handler.Handlers{
		Auth:      authHandler,
		Account:   handler.NewAccountHandler(accountService, authHandler),
		Product:   handler.NewProductHandler(catalogService),
		Cart:      handler.NewCartHandler(cartService, orderService),
		Order:     handler.NewOrderHandler(orderService),
		Dashboard: handler.NewDashboardHandler(dashService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "go-storefront",
		BodyLimit: 8 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	app.Use(middleware.Observability(zlog, m))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	app.Static("/uploads", cfg.UploadDir)

	// 7. Routes
	handler.Register(app, handlers, authService)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	if producer != nil {
		producer.WaitClosed()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server exited")
}
