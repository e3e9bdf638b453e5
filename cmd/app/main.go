package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdkarim/traveldesk/config"
	"github.com/mdkarim/traveldesk/internal/bootstrap"
	"github.com/mdkarim/traveldesk/internal/desktop"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"github.com/mdkarim/traveldesk/internal/service/auth"
	"github.com/mdkarim/traveldesk/internal/service/booking"
	"github.com/mdkarim/traveldesk/internal/service/inventory"
	"github.com/mdkarim/traveldesk/internal/service/reports"
	"github.com/mdkarim/traveldesk/internal/service/settings"
	"github.com/mdkarim/traveldesk/internal/storage"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, cleanup, err := openKV(ctx, cfg)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer cleanup()

	collections := storage.NewCollections(kv, cfg.Storage.Prefix, logger)

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
	}

	authService := auth.NewAuthService(collections, time.Duration(cfg.Session.TTLMinutes)*time.Minute, logger)
	if err := authService.EnsureDefaults(ctx); err != nil {
		logger.Fatal("seed default users", zap.Error(err))
	}

	inventoryOpts := []inventory.InventoryServiceOption{}
	bookingOpts := []booking.BookingServiceOption{}
	if producer != nil {
		inventoryOpts = append(inventoryOpts, inventory.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	services := bootstrap.Services{
		Auth:      authService,
		Inventory: inventory.NewInventoryService(collections, logger, inventoryOpts...),
		Booking:   booking.NewBookingService(collections, logger, bookingOpts...),
		Reports:   reports.NewReportService(collections, logger),
		Settings:  settings.NewSettingsService(collections),
		Desktop:   desktop.NewRegistry(cfg.Desktop.ViewportWidth, cfg.Desktop.ViewportHeight),
	}

	if err := bootstrap.Run(ctx, cfg, services, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
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
