package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // mysql|memory
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	StripeBase string
	StripeKey  string
	StripeRPS  int

	JWTSecret string
	AuthTTL   time.Duration

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	SMTPFromName  string
	NotifyTimeout time.Duration

	FrontendURL string
	ResetTTL    time.Duration
	SeedWorkers int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver: env("STORE_DRIVER", "mysql"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/booking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		StripeBase: env("STRIPE_BASE_URL", "https://api.stripe.com/v1"),
		StripeKey:  env("STRIPE_SECRET_KEY", ""),
		StripeRPS:  atoi("STRIPE_RPS", 20),

		JWTSecret: env("JWT_SECRET", ""),
		AuthTTL:   time.Duration(atoi("AUTH_TTL_HOURS", 48)) * time.Hour,

		SMTPHost:      env("SMTP_HOST", ""),
		SMTPPort:      env("SMTP_PORT", "587"),
		SMTPUser:      env("SMTP_USERNAME", ""),
		SMTPPass:      env("SMTP_PASSWORD", ""),
		SMTPFromName:  env("SMTP_FROM_NAME", "Hotel Booking"),
		NotifyTimeout: time.Duration(atoi("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,

		FrontendURL: env("FRONTEND_URL", "http://localhost:5173"),
		ResetTTL:    time.Duration(atoi("RESET_TTL_MINUTES", 60)) * time.Minute,
		SeedWorkers: atoi("SEED_WORKERS", 4),
	}
	if c.StripeKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
