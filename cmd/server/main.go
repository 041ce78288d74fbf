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

	"marketplace-service/config"
	"marketplace-service/internal/api"
	"marketplace-service/internal/auth"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/ratelimit"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/service"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
	"marketplace-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service", zap.String("env", cfg.Server.Env))

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer("marketplace-service", cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	db, err := store.NewStore(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	var (
		cache   service.Cache
		limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using local rate limiter and no stats cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
			limiter = ratelimit.NewRedis(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, util.Named("ratelimit"))
			logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var producer *broker.Producer
	if cfg.Kafka.Enabled {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))
	}
	eventPublisher := broker.NewEventPublisher(producer)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	dashboardService := service.NewDashboardService(db, cache, cfg.Dashboard.CacheTTL)

	services := api.Services{
		Auth:      service.NewAuthService(db, tokens, eventPublisher, cfg.Auth.BcryptCost),
		Users:     service.NewUserService(db, cfg.Auth.BcryptCost),
		Vendors:   service.NewVendorService(db, eventPublisher),
		Products:  service.NewProductService(db, eventPublisher),
		Orders:    service.NewOrderService(db, eventPublisher),
		Carts:     service.NewCartService(db),
		Dashboard: dashboardService,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var statsWorker *worker.StatsWorker
	if cfg.Kafka.Enabled && cache != nil {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		statsWorker = worker.NewStatsWorker(consumer, dashboardService)
		go func() {
			if err := statsWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Stats worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, tokens, limiter, db, cfg.Server.IsProduction())
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if statsWorker != nil {
		if err := statsWorker.Stop(); err != nil {
			logger.Warn("Error stopping stats worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
