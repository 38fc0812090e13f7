package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icar-directory/backend/internal/app"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/db"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	// The event log is optional; the backlog report runs without Redis.
	if cfg.RedisEnabled {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, moderation events will not be logged", zap.Error(err))
		} else {
			defer rdb.Close()
			sub := events.NewRedisSubscriber(rdb, log)
			if err := sub.Subscribe(ctx, events.StreamModeration, logEvent(log)); err != nil {
				log.Warn("failed to subscribe to moderation events", zap.Error(err))
			}
		}
	}

	reporter := services.NewBacklogReporter(store.Ledger, cfg.PendingStaleAfter, log)

	log.Info("worker started", zap.Duration("backlog_interval", cfg.BacklogInterval))
	reporter.Report(ctx)

	backlogTicker := time.NewTicker(cfg.BacklogInterval)
	defer backlogTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-backlogTicker.C:
			reporter.Report(ctx)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func logEvent(log *zap.Logger) func(events.Event) {
	return func(e events.Event) {
		fields := []zap.Field{zap.String("type", e.Type)}
		for _, key := range []string{"edit_id", "claim_id", "organization_id", "entity_type", "entity_id", "actor_id", "edit_kind", "decision", "reviewer_id"} {
			if v, ok := e.Payload[key].(string); ok {
				fields = append(fields, zap.String(key, v))
			}
		}
		log.Info("moderation event", fields...)
	}
}
