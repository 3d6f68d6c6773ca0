package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/social-media-api/internal/config"
	"github.com/iliyamo/social-media-api/internal/database"
	"github.com/iliyamo/social-media-api/internal/handler"
	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/metrics"
	"github.com/iliyamo/social-media-api/internal/middleware"
	"github.com/iliyamo/social-media-api/internal/queue"
	"github.com/iliyamo/social-media-api/internal/repository"
	"github.com/iliyamo/social-media-api/internal/router"
	"github.com/iliyamo/social-media-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		return err
	}
	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		accountStore service.AccountStore
		messageStore service.MessageStore
		pinger       handler.Pinger
	)
	switch cfg.Store {
	case config.StoreMemory:
		mem := repository.NewMemoryStore(log)
		accountStore, messageStore = mem.Accounts(), mem.Messages()
		log.Warn(ctx, "using in-memory store; data is lost on exit")
	default:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if cfg.Migrate {
			if err := database.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		accountStore = repository.NewAccountRepo(db, log)
		messageStore = repository.NewMessageRepo(db, log)
		pinger = db
	}

	accounts := service.NewAccountService(accountStore, log)
	messages := service.NewMessageService(messageStore, log)

	var events handler.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, log)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.ActivityLog, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "activity consumer stopped", "err", err)
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewCacheClient(ctx, cacheCfg)
	if rdb != nil {
		defer rdb.Close()
	} else if cacheCfg.Enabled {
		log.Warn(ctx, "redis unreachable; response cache disabled")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(middleware.NewRedisCache(cacheCfg, rdb, log))

	router.RegisterRoutes(e, pinger)
	router.RegisterAccounts(e, handler.NewAccountHandler(accounts, events, log))
	router.RegisterMessages(e, handler.NewMessageHandler(messages, accounts, events, log))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "store", cfg.Store)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
