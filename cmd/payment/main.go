package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flicky/go-shop-services/internal/config"
	"github.com/flicky/go-shop-services/internal/handler"
	"github.com/flicky/go-shop-services/internal/repository"
	"github.com/flicky/go-shop-services/internal/server"
	"github.com/flicky/go-shop-services/internal/service"
)

func main() {
	cfg, err := config.LoadPayment()
	if err != nil {
		server.NewLogger(config.LogConfig{}, "payment").Error("load config", "error", err)
		os.Exit(1)
	}
	log := server.NewLogger(cfg.Log, "payment")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := server.OpenPool(ctx, cfg.DB, repository.PaymentsSchema)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("connected to PostgreSQL", "success_rate", cfg.SuccessRate)

	gateway := service.NewSimulatedGateway(cfg.SuccessRate)
	paymentSvc := service.NewPaymentService(repository.NewPaymentRepository(dbPool), gateway)

	router := server.NewRouter(cfg.Server, log)
	handler.NewHealthHandler("payment", dbPool, nil).Register(router)
	handler.NewPaymentHandler(paymentSvc).Register(router)

	if err := server.Run(ctx, cfg.Server, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
