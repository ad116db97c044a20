package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/pkg/awsx"
	"github.com/shoparak/shop-backend/pkg/logger"
	"github.com/shoparak/shop-backend/pkg/middleware"
	"github.com/shoparak/shop-backend/services/shop/config"
	"github.com/shoparak/shop-backend/services/shop/database"
	"github.com/shoparak/shop-backend/services/shop/kafka"
	"github.com/shoparak/shop-backend/services/shop/repository"
	"github.com/shoparak/shop-backend/services/shop/routes"
	"github.com/shoparak/shop-backend/services/shop/services"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(cfg.Env)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.CloseMongo(mongoDB)

	pg, err := database.ConnectPostgres(database.PostgresConfig(cfg.Postgres))
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderTopic)
	defer producer.Close()

	// SNS is optional: without a topic ARN the coupon_applied publisher stays
	// disabled.
	var snsClient awsx.SNSPublisher
	if cfg.CouponTopicArn != "" {
		awsCfg, err := awsx.LoadConfig(ctx)
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		snsClient = awsx.NewSNSClient(awsCfg)
	}

	productCache := services.NewProductCache(redisClient, cfg.CacheTTL, log)
	productService := services.NewProductService(
		repository.NewMongoProductRepository(mongoDB), productCache, log)
	couponService := services.NewCouponService(
		repository.NewGormCouponRepository(pg), log)
	orderService := services.NewOrderService(
		repository.NewGormOrderRepository(pg), couponService, producer,
		snsClient, cfg.CouponTopicArn, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(log), gin.Recovery())

	routes.Register(router, productService, couponService, orderService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Shop API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
