package main

import (
	"context"
	"log"
	"time"

	"storefront-admin/internal/core/auth"
	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/config"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/core/server"
	catalogadapter "storefront-admin/internal/features/catalog/adapters"
	cataloghandler "storefront-admin/internal/features/catalog/handler"
	catalogservice "storefront-admin/internal/features/catalog/service"
	dashboardadapter "storefront-admin/internal/features/dashboard/adapters"
	dashboardhandler "storefront-admin/internal/features/dashboard/handler"
	dashboardservice "storefront-admin/internal/features/dashboard/service"
	notifhandler "storefront-admin/internal/features/notifications/handler"
	notifservice "storefront-admin/internal/features/notifications/service"
	orderadapter "storefront-admin/internal/features/orders/adapters"
	orderhandler "storefront-admin/internal/features/orders/handler"
	orderservice "storefront-admin/internal/features/orders/service"
	systemhandler "storefront-admin/internal/features/system/handler"

	"go.uber.org/zap"
)

// @title Storefront Admin API
// @version 1.0
// @description Admin gateway for the storefront commerce platform: order status management, returns, catalog administration and live notifications.
// @contact.name API Support
// @contact.email support@storefront-admin.local
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Redis backs both the cache and the event bus.
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisAdapter.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := redisAdapter.Ping(startupCtx); err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}

	// Verify the commerce platform is reachable before serving traffic.
	commerceOrders := orderadapter.NewCommerceAdapter(cfg.Commerce)
	if err := commerceOrders.HealthCheck(startupCtx); err != nil {
		l.Fatal("Commerce API health check failed", zap.Error(err))
	}
	cancelStartup()
	l.Info("Commerce API connection verified")

	listTTL := time.Duration(cfg.Redis.ListCacheTTLSeconds) * time.Second
	summaryTTL := time.Duration(cfg.Redis.SummaryCacheTTLSeconds) * time.Second

	// Orders
	orderService := orderservice.NewOrderService(commerceOrders, redisAdapter, redisAdapter, listTTL)
	orderHandler := orderhandler.NewOrderHandler(orderService)

	// Catalog
	catalogService := catalogservice.NewCatalogService(catalogadapter.NewCommerceAdapter(cfg.Commerce), redisAdapter, listTTL)
	catalogHandler := cataloghandler.NewCatalogHandler(catalogService)

	// Dashboard
	dashboardService := dashboardservice.NewDashboardService(dashboardadapter.NewCommerceAdapter(cfg.Commerce), redisAdapter, summaryTTL)
	dashboardHandler := dashboardhandler.NewDashboardHandler(dashboardService)

	// Notifications: one hub per instance, fed by the redis event channel.
	hub := notifservice.NewHub()
	notifService := notifservice.NewNotificationService(hub, redisAdapter, orderservice.EventChannel)
	notifHandler := notifhandler.NewNotificationHandler(notifService, hub, cfg.Auth)

	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go func() {
		if err := notifService.Run(relayCtx); err != nil {
			l.Error("Notification relay stopped", zap.Error(err))
		}
	}()

	systemHandler := systemhandler.NewSystemHandler(commerceOrders, redisAdapter, cfg.Auth)

	srv := server.New(cfg)
	app := srv.App

	// Public routes
	app.Post("/login", systemHandler.Login)
	app.Get("/health", systemHandler.Health)

	// Websocket: browsers cannot send an Authorization header on the
	// handshake, so the Upgrade middleware checks a token query parameter.
	app.Use("/ws", notifHandler.Upgrade)
	app.Get("/ws", notifHandler.ServeWS())

	// Authenticated routes
	authMW := auth.Middleware(cfg.Auth)

	orders := app.Group("/orders", authMW)
	orders.Get("/statuses", orderHandler.ListStatuses)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Get("/:id/transitions", orderHandler.GetTransitions)
	orders.Put("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/return", orderHandler.RequestReturn)
	orders.Put("/:id/return", orderHandler.ResolveReturn)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)
	orders.Delete("/:id", auth.RequireAdmin(), orderHandler.DeleteOrder)

	products := app.Group("/products", authMW)
	products.Get("/", catalogHandler.ListProducts)
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Put("/:id", catalogHandler.UpdateProduct)
	products.Delete("/:id", catalogHandler.DeleteProduct)

	catalog := app.Group("/catalog", authMW)
	catalog.Get("/:resource", catalogHandler.ListAttributes)
	catalog.Post("/:resource", catalogHandler.CreateAttribute)
	catalog.Put("/:resource/:id", catalogHandler.UpdateAttribute)
	catalog.Delete("/:resource/:id", catalogHandler.DeleteAttribute)

	chat := app.Group("/chat", authMW)
	chat.Post("/messages", notifHandler.PostChatMessage)

	dashboard := app.Group("/dashboard", authMW)
	dashboard.Get("/summary", dashboardHandler.GetSummary)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
