package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendor-service/config"
	"vendor-service/internal/api"
	"vendor-service/internal/broker"
	"vendor-service/internal/redisclient"
	"vendor-service/internal/service"
	"vendor-service/internal/store"
	"vendor-service/internal/util"
	"vendor-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting vendor service")

	tp, err := util.InitTracer("vendor-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	cacheTTL := time.Duration(cfg.Business.SnapshotCacheTTLSeconds) * time.Second
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPerformance)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	calculator := service.NewMetricsCalculator(db)
	lockTTL := time.Duration(cfg.Business.VendorLockTTLSeconds) * time.Second
	performanceService := service.NewPerformanceService(
		db, db, db, calculator, redisClient, eventPublisher, lockTTL)
	vendorService := service.NewVendorService(db, redisClient)
	purchaseOrderService := service.NewPurchaseOrderService(db, db, performanceService)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	snapshotConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPerformance, cfg.Kafka.ConsumerGroup)
	performanceWorker := worker.NewPerformanceWorker(snapshotConsumer, redisClient)
	go func() {
		if err := performanceWorker.Start(workerCtx); err != nil {
			log.Printf("Performance worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(vendorService, purchaseOrderService, performanceService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	performanceWorker.Stop()

	log.Println("Server exited")
}
