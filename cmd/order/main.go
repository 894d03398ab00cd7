package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flicky/go-shop-services/internal/client"
	"github.com/flicky/go-shop-services/internal/config"
	"github.com/flicky/go-shop-services/internal/events"
	"github.com/flicky/go-shop-services/internal/handler"
	"github.com/flicky/go-shop-services/internal/lock"
	"github.com/flicky/go-shop-services/internal/repository"
	"github.com/flicky/go-shop-services/internal/server"
	"github.com/flicky/go-shop-services/internal/service"
)

func main() {
	cfg, err := config.LoadOrder()
	if err != nil {
		server.NewLogger(config.LogConfig{}, "order").Error("load config", "error", err)
		os.Exit(1)
	}
	log := server.NewLogger(cfg.Log, "order")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := server.OpenPool(ctx, cfg.DB, repository.OrdersSchema)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := server.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Error("open redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("connected to Redis")
	}

	pub, err := newPublisher(cfg, log)
	if err != nil {
		log.Error("open event sink", "sink", cfg.Events.Sink, "error", err)
		os.Exit(1)
	}
	emitter := events.NewAsync(pub, cfg.Events.PublishTimeout, log)
	defer func() {
		if err := emitter.Close(); err != nil {
			log.Warn("close event sink", "error", err)
		}
	}()
	log.Info("event sink ready", "sink", cfg.Events.Sink)

	orderSvc := service.NewOrderService(
		repository.NewOrderRepository(dbPool),
		client.NewCartClient(cfg.CartURL, cfg.Client.Timeout),
		client.NewPaymentClient(cfg.PaymentURL, cfg.Client.Timeout),
		emitter,
		log,
	)
	if cfg.CheckoutLock {
		orderSvc.WithCheckoutLock(lock.NewRedisLocker(redisClient, "checkout:", cfg.CheckoutLockTTL))
		log.Info("checkout lock enabled", "ttl", cfg.CheckoutLockTTL)
	}

	router := server.NewRouter(cfg.Server, log)
	handler.NewHealthHandler("order", dbPool, redisClient).Register(router)
	handler.NewOrderHandler(orderSvc).Register(router)

	if err := server.Run(ctx, cfg.Server, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newPublisher(cfg *config.OrderConfig, log *slog.Logger) (events.Publisher, error) {
	switch cfg.Events.Sink {
	case config.SinkKafka:
		return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.SinkRabbitMQ:
		return events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	case config.SinkLog:
		return events.NewLogPublisher(log), nil
	case config.SinkNone:
		return events.NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Events.Sink)
	}
}
