package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-commerce-core/internal/availability"
	"go-commerce-core/internal/config"
	"go-commerce-core/internal/handler"
	"go-commerce-core/internal/middleware"
	"go-commerce-core/internal/repository"
	"go-commerce-core/internal/service"
	"go-commerce-core/internal/ws"
	"go-commerce-core/pkg/database"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Get()
	appLogger := cfg.NewLogger()
	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", gecho.Field("error", err))
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect database", gecho.Field("error", err))
	}
	// Auto Migrate (production deployments should run migrations separately)
	if err := repository.AutoMigrate(db); err != nil {
		appLogger.Fatal("Failed to migrate database", gecho.Field("error", err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(appLogger)
	go wsHub.Run()

	// 4. Rule cache
	ruleCache := newRuleCache(cfg.Cache, appLogger)

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	cartRepo := repository.NewCartRepo(db)
	statusRepo := repository.NewStatusRepo(db)
	ruleRepo := repository.NewAvailabilityRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)

	availabilityService := service.NewAvailabilityService(ruleRepo, ruleCache, appLogger)
	productService := service.NewProductService(productRepo, db, wsHub, appLogger)
	cartService := service.NewCartService(cartRepo, productRepo, availabilityService, db, appLogger)
	statusService := service.NewStatusService(statusRepo, db, appLogger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, statusRepo, userRepo, db, cfg.Orders, wsHub, appLogger)
	assignmentService := service.NewAssignmentService(assignmentRepo, orderRepo, statusRepo, userRepo, db, wsHub, appLogger)
	dashService := service.NewDashboardService(orderRepo)

	productHandler := handler.NewProductHandler(productService, appLogger)
	cartHandler := handler.NewCartHandler(cartService, appLogger)
	orderHandler := handler.NewOrderHandler(orderService, appLogger)
	adminHandler := handler.NewAdminHandler(orderService, statusService, assignmentService, appLogger)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService, appLogger)
	dashHandler := handler.NewDashboardHandler(dashService, appLogger)

	// Authenticated routes are limited per user, the websocket upgrade per IP.
	userLimit, err := middleware.RateLimit(cfg.RateLimit, appLogger)
	if err != nil {
		appLogger.Fatal("Invalid rate limit", gecho.Field("rate", cfg.RateLimit), gecho.Field("error", err))
	}
	ipLimit, err := middleware.RateLimit(cfg.RateLimit, appLogger)
	if err != nil {
		appLogger.Fatal("Invalid rate limit", gecho.Field("rate", cfg.RateLimit), gecho.Field("error", err))
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(cfg.JWTSecret, userRepo), userLimit)

	protected.Get("/availability", availabilityHandler.Classify)

	// Cart Routes
	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/lines", cartHandler.AddLine)
	protected.Put("/cart/lines/:id", cartHandler.SetLineQuantity)
	protected.Delete("/cart/lines/:id", cartHandler.RemoveLine)
	protected.Delete("/cart", cartHandler.Clear)

	// Order Routes
	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.GetOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	// ============ STAFF ROUTES ============
	admin := protected.Group("/admin", middleware.RequireStaff())

	admin.Get("/products/:id", productHandler.GetProduct)
	admin.Post("/products/drafts", productHandler.CreateDraft)
	admin.Post("/products/:id/finalize", productHandler.Finalize)
	admin.Delete("/products/drafts/:id", productHandler.DeleteDraft)

	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Put("/orders/:id/payment", adminHandler.UpdatePaymentStatus)
	admin.Put("/orders/:id/manager", adminHandler.AssignManager)
	admin.Post("/orders/:id/accept", adminHandler.AcceptOrder)
	admin.Get("/managers", adminHandler.ListManagers)

	admin.Get("/order-statuses", adminHandler.ListStatuses)
	admin.Post("/order-statuses", adminHandler.CreateStatus)
	admin.Put("/order-statuses/order", adminHandler.ReorderStatuses)

	admin.Get("/availability-rules", availabilityHandler.ListRules)
	admin.Post("/availability-rules", availabilityHandler.CreateRule)
	admin.Delete("/availability-rules/:id", availabilityHandler.DeleteRule)

	admin.Get("/dashboard/stats", dashHandler.GetOrderStats)
	admin.Get("/dashboard/order-volume", dashHandler.GetOrderVolume)

	// WebSocket Route
	app.Use("/ws", ipLimit, func(c *fiber.Ctx) error {
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
			appLogger.Fatal("Server stopped", gecho.Field("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		appLogger.Fatal("Server forced to shutdown", gecho.Field("error", err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("Server exited")
}

// newRuleCache picks the availability rule cache backend.
func newRuleCache(cfg config.CacheConfig, appLogger *gecho.Logger) availability.RuleCache {
	switch cfg.Driver {
	case "none":
		return availability.NoCache{}
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			appLogger.Warn("Redis unreachable, falling back to in-memory rule cache", gecho.Field("addr", cfg.RedisAddr), gecho.Field("error", err))
			return availability.NewMemoryCache(cfg.TTL)
		}
		return availability.NewRedisCache(client, availability.DefaultRedisKey, cfg.TTL)
	default:
		return availability.NewMemoryCache(cfg.TTL)
	}
}
