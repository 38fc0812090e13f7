package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/app"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/db"
	"github.com/icar-directory/backend/internal/events"
	apphttp "github.com/icar-directory/backend/internal/http"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/http/handlers"
	"github.com/icar-directory/backend/internal/moderation"
	"github.com/icar-directory/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	// Redis (optional)
	var rdb *redis.Client
	if cfg.RedisEnabled {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// Events and trust cache
	var publisher events.Publisher = events.NopPublisher{}
	var trustCache moderation.TrustCache
	var wsHub *handlers.WSHub
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, log)
		trustCache = services.NewRedisTrustCache(rdb, cfg.TrustCacheTTL)
		wsHub = handlers.NewWSHub(cfg, events.NewRedisSubscriber(rdb, log), log)
		if err := wsHub.Start(ctx); err != nil {
			log.Warn("moderation feed unavailable", zap.Error(err))
			wsHub = nil
		}
	}

	// Services
	editService := services.NewEditService(store.Records, store.Ledger, cfg.ModerationRules(), trustCache, publisher, log)
	directoryService := services.NewDirectoryService(store.Records, log)
	claimService := services.NewClaimService(store.Claims, store.Records, publisher, log)
	taxonomyService := services.NewTaxonomyService(store.Taxonomy, log)

	// Fiber app
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
		},
	})

	apphttp.SetupRouter(fiberApp, cfg, log, rdb, apphttp.Handlers{
		Directory:  handlers.NewDirectoryHandler(directoryService, log),
		Edits:      handlers.NewEditHandler(editService, log),
		Moderation: handlers.NewModerationHandler(editService, log),
		Me:         handlers.NewMeHandler(editService, log),
		Claims:     handlers.NewClaimHandler(claimService, log),
		Taxonomy:   handlers.NewTaxonomyHandler(taxonomyService, log),
		WSHub:      wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = fiberApp.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr), zap.String("store", store.Driver))
	if err := fiberApp.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
