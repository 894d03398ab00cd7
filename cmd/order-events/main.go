package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/go-shop-services/internal/config"
	"github.com/flicky/go-shop-services/internal/events"
	"github.com/flicky/go-shop-services/internal/server"
	"github.com/flicky/go-shop-services/internal/worker"
)

func main() {
	cfg, err := config.LoadEventWorker()
	if err != nil {
		server.NewLogger(config.LogConfig{}, "order-events").Error("load config", "error", err)
		os.Exit(1)
	}
	log := server.NewLogger(cfg.Log, "order-events")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := events.SetupRabbitMQ(amqpCh, cfg.RabbitMQ.Exchange); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	if err := amqpCh.Qos(1, 0, false); err != nil {
		log.Error("set QoS", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	var store worker.IdempotencyStore
	redisClient, err := server.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Error("open redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		store = worker.NewRedisIdempotencyStore(redisClient, cfg.IdempotencyTTL)
		log.Info("connected to Redis")
	}

	w := worker.NewEventWorker(amqpCh, cfg.RabbitMQ.Exchange, cfg.Consumer, worker.LogEvent(log), store, log)
	if err := w.Start(ctx); err != nil {
		log.Error("start event worker", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("shutting down...")
	w.Stop()
	log.Info("worker stopped")
}
