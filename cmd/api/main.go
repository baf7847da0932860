package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sparkpay-sync/internal/core/cache"
	"sparkpay-sync/internal/core/config"
	"sparkpay-sync/internal/core/httpclient"
	"sparkpay-sync/internal/core/logger"
	"sparkpay-sync/internal/core/server"
	orderadapter "sparkpay-sync/internal/features/orders/adapters"
	orderhandler "sparkpay-sync/internal/features/orders/handler"
	orderservice "sparkpay-sync/internal/features/orders/service"

	"go.uber.org/zap"
)

// @title SparkPay Sync API
// @version 1.0
// @description This API exposes SparkPay store orders and an incremental order sync.
// @contact.name API Support
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
		zap.String("store_url", cfg.SparkPay.StoreURL),
		logger.Secret("auth_token", cfg.SparkPay.AuthToken),
	)

	initialSince, err := orderadapter.ParseStartDate(cfg.Sync.InitialSince)
	if err != nil {
		l.Fatal("Invalid SYNC_INITIAL_SINCE", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize the store client and run Health Check
	httpClient := httpclient.NewClient(cfg.SparkPay.Timeout(), cfg.Proxy.Settings())
	orderClient := orderadapter.NewOrderClient(
		cfg.SparkPay.StoreURL,
		cfg.SparkPay.AuthToken,
		orderadapter.WithHTTPClient(httpClient),
	)
	if err := orderClient.HealthCheck(ctx); err != nil {
		l.Fatal("SparkPay Health Check Failed", zap.Error(err))
	}
	l.Info("SparkPay connection verified")

	// Initialize the cursor store
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisAdapter.Close()

	if err := redisAdapter.Ping(ctx); err != nil {
		l.Fatal("Redis Ping Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Initialize Order Service & Handler
	cursorRepo := orderadapter.NewRedisCursorRepository(redisAdapter)
	orderService := orderservice.NewOrderService(orderClient, cursorRepo, initialSince)
	orderHandler := orderhandler.NewOrderHandler(orderService)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/orders", orderHandler.ListOrders)
	srv.App.Post("/orders/sync", orderHandler.SyncOrders)
	srv.App.Delete("/orders/sync", orderHandler.ResetSync)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		if err := srv.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
