package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/auth"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/mailer"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/adapters/stripe"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// store is everything the services need from persistence.
type store interface {
	domain.HotelRepository
	domain.BookingLedger
	domain.UserRepository
	domain.MessageRepository
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// persistence + cache
	var (
		repo  store
		cache domain.Cache
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		repo, cache = memory.New(), memory.NewCache()
	default:
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)

		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; hotel lookups will bypass the cache")
		}
		cache = rc
	}

	// outbound
	payments, err := stripe.New(cfg.StripeBase, cfg.StripeKey, cfg.StripeRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize payment client")
	}
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFromName)
	if !mail.Configured() {
		log.Warn().Msg("SMTP_HOST is empty; emails are logged instead of sent")
	}
	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.AuthTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session tokens")
	}

	// services
	disp := app.NewDispatcher(mail, cfg.NotifyTimeout)
	queries := app.NewQueryService(repo, cache, cfg.CacheTTL)
	handlers := &server.Handlers{
		Accounts:      app.NewAccountService(repo, disp, cfg.FrontendURL, cfg.ResetTTL),
		Bookings:      app.NewBookingService(queries, repo, payments, disp),
		Contact:       app.NewContactService(repo, repo, queries, disp),
		Hotels:        queries,
		Tokens:        tokens,
		SecureCookies: cfg.AppEnv == "prod",
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := disp.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications abandoned")
	}
	log.Info().Msg("bye")
}
