package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/imagen-studio/internal/config"
	"github.com/iliyamo/imagen-studio/internal/database"
	"github.com/iliyamo/imagen-studio/internal/handler"
	"github.com/iliyamo/imagen-studio/internal/imagegen"
	"github.com/iliyamo/imagen-studio/internal/logger"
	"github.com/iliyamo/imagen-studio/internal/metrics"
	"github.com/iliyamo/imagen-studio/internal/middleware"
	"github.com/iliyamo/imagen-studio/internal/queue"
	"github.com/iliyamo/imagen-studio/internal/repository"
	"github.com/iliyamo/imagen-studio/internal/router"
	"github.com/iliyamo/imagen-studio/internal/service"
	"github.com/iliyamo/imagen-studio/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it responses are served uncached.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, response cache disabled", "addr", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)

	generator, err := imagegen.NewClient(ctx, cfg.GenAIAPIKey, cfg.ImageModel, log)
	if err != nil {
		log.Error("create image client", "error", err)
		os.Exit(1)
	}

	var store service.ImageStore
	if cfg.S3.Enabled() {
		up, err := storage.NewUploader(cfg.S3)
		if err != nil {
			log.Error("create s3 uploader", "error", err)
			os.Exit(1)
		}
		store = up
	}

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	requestRepo := repository.NewCreditRequestRepo(db)
	txnRepo := repository.NewTransactionRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	galleryRepo := repository.NewGalleryRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	supportRepo := repository.NewSupportRepo(db)
	activityRepo := repository.NewActivityRepo(db)

	if n, err := tokenRepo.DeleteExpired(ctx, time.Now().UTC()); err != nil {
		log.Warn("prune refresh tokens", "error", err)
	} else if n > 0 {
		log.Info("pruned expired refresh tokens", "count", n)
	}

	var publisher service.ActivityPublisher
	if cfg.Queue.Enabled {
		publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.ActivityQueue, log)
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.ActivityQueue, activityRepo, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", "error", err)
			}
		}()
	}

	// Services
	users := service.NewUserService(userRepo, favoriteRepo, service.UserOptions{
		InitialCredits: cfg.InitialCredits,
		BcryptCost:     cfg.BcryptCost,
		IsAdminEmail:   cfg.IsAdminEmail,
		Logger:         log,
	})
	credits := service.NewCreditService(db, userRepo, requestRepo, txnRepo, log)
	gen := service.NewGenerationService(db, userRepo, historyRepo, favoriteRepo, service.GenerationOptions{
		Generator: generator,
		Store:     store,
		Cost:      cfg.GenerationCost,
		Timeout:   cfg.GenerationTimeout,
		Logger:    log,
	})
	gallery := service.NewGalleryService(galleryRepo, log)
	reviews := service.NewReviewService(reviewRepo)
	support := service.NewSupportService(supportRepo)
	activity := service.NewActivityService(activityRepo, publisher, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String()}
			if v.Error != nil {
				log.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(metrics.Middleware())

	router.RegisterRoutes(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokenRepo, log),
		User:      handler.NewUserHandler(users, credits, gen, cache, log),
		Image:     handler.NewImageHandler(gen, gallery, log),
		Community: handler.NewCommunityHandler(reviews, support, cache, log),
		Admin:     handler.NewAdminHandler(users, credits, gen, gallery, support, activity, cache, log),
		Health:    handler.Health(db),
		Metrics:   metrics.Handler(),
	}, cfg.JWTSecret, cache.Middleware())

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
