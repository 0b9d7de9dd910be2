package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	"github.com/revature/expense-manager/internal/config"
	"github.com/revature/expense-manager/internal/database"
	"github.com/revature/expense-manager/internal/handler"
	"github.com/revature/expense-manager/internal/logger"
	"github.com/revature/expense-manager/internal/middleware"
	"github.com/revature/expense-manager/internal/queue"
	"github.com/revature/expense-manager/internal/repository"
	"github.com/revature/expense-manager/internal/router"
	"github.com/revature/expense-manager/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	// Amounts are JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	expenses := repository.NewExpenseRepo(db)
	approvals := repository.NewApprovalRepo(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, users, log)
	auth := service.NewAuthService(users, tokens, log)
	projector := service.NewQueryProjector(expenses)
	engine := service.NewApprovalEngine(approvals)
	publisher := service.NewReviewPublisher(cfg.AMQPURL, log)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))

	guard := middleware.ManagerOnly(tokens)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, tokens, cfg.CookieSecure),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterExpenses(e, handler.NewExpenseHandler(projector, engine, publisher, cache, log), guard, cache.Middleware())
	router.RegisterReports(e, handler.NewReportHandler(projector), guard, cache.Middleware())

	if cfg.IntakeEnabled {
		intake := &queue.SubmissionConsumer{
			URL:       cfg.AMQPURL,
			Expenses:  expenses,
			Approvals: approvals,
			Log:       log,
			OnCreated: func(ctx context.Context) {
				if err := cache.Invalidate(ctx); err != nil {
					log.Warn().Err(err).Msg("cache invalidation failed")
				}
			},
		}
		go func() {
			log.Info().Str("queue", queue.SubmittedQueue).Msg("starting submission consumer")
			if err := intake.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("submission consumer stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
