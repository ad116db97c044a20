package config

import (
	"os"
	"time"
)

// Config is the env-driven configuration for the shop API.
type Config struct {
	Env  string
	Port string

	MongoURL string
	MongoDB  string
	RedisURL string
	Postgres PostgresEnv
	CacheTTL time.Duration

	KafkaBrokers   string
	OrderTopic     string
	CouponTopicArn string // optional SNS topic for coupon_applied events
}

type PostgresEnv struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

func Load() Config {
	return Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		MongoURL: getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "shoparak"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		Postgres: PostgresEnv{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "shoparak"),
			Password: getEnv("POSTGRES_PASSWORD", "shoparak"),
			DBName:   getEnv("POSTGRES_DB", "shoparak"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Tehran"),
		},
		CacheTTL: 5 * time.Minute,

		KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
		OrderTopic:     getEnv("ORDER_TOPIC", "order.created"),
		CouponTopicArn: os.Getenv("COUPON_SNS_TOPIC_ARN"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
