package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/pkg/logger"
	"github.com/shoparak/shop-backend/services/notification/consumer"
	"github.com/shoparak/shop-backend/services/notification/sender"
	"github.com/shoparak/shop-backend/services/shop/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(cfg.Env)
	defer log.Sync()

	var email sender.EmailSender
	smtpSender, err := sender.NewSMTPSender()
	if err != nil {
		log.Warn("SMTP not configured, emails go to the log", zap.Error(err))
		email = sender.NewLogSender(log)
	} else {
		email = smtpSender
	}

	groupID := os.Getenv("CONSUMER_GROUP")
	if groupID == "" {
		groupID = "notification-worker"
	}

	c := consumer.NewOrderConsumer(
		strings.Split(cfg.KafkaBrokers, ","), cfg.OrderTopic, groupID, email, log)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info("Shutting down notification worker...")
		cancel()
	}()

	c.Run(ctx)
	log.Info("Notification worker stopped")
}
