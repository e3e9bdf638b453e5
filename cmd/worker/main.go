package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdkarim/traveldesk/config"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"github.com/mdkarim/traveldesk/internal/notify"
	"github.com/mdkarim/traveldesk/internal/service/auth"
	"github.com/mdkarim/traveldesk/internal/storage"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, cleanup, err := openKV(ctx, cfg)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer cleanup()

	collections := storage.NewCollections(kv, cfg.Storage.Prefix, logger)
	authService := auth.NewAuthService(collections, time.Duration(cfg.Session.TTLMinutes)*time.Minute, logger)
	sender := notify.NewSender(collections, logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode event error", zap.Error(err))
				return nil
			}
			if err := sender.Send(ctx, event); err != nil {
				logger.Warn("send notification error", zap.String("type", event.Type), zap.Error(err))
			}
			return nil
		}); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SessionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			removed, err := authService.SweepExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session sweep error", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("swept expired sessions", zap.Int("removed", removed))
			}
		case s := <-sig:
			logger.Info("received signal, shutting down", zap.String("signal", s.String()))
			return
		}
	}
}

func openKV(ctx context.Context, cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		kv := storage.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	case "redis":
		kv := storage.NewRedisKV(cfg.Redis)
		return kv, func() { _ = kv.Close() }, nil
	default:
		return storage.NewMemoryKV(), func() {}, nil
	}
}
