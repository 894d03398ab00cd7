package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flicky/go-shop-services/internal/client"
	"github.com/flicky/go-shop-services/internal/config"
	"github.com/flicky/go-shop-services/internal/handler"
	"github.com/flicky/go-shop-services/internal/repository"
	"github.com/flicky/go-shop-services/internal/server"
	"github.com/flicky/go-shop-services/internal/service"
)

func main() {
	cfg, err := config.LoadCart()
	if err != nil {
		server.NewLogger(config.LogConfig{}, "cart").Error("load config", "error", err)
		os.Exit(1)
	}
	log := server.NewLogger(cfg.Log, "cart")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := server.OpenPool(ctx, cfg.DB, repository.CartItemsSchema)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("connected to PostgreSQL")

	catalog := client.NewCatalogClient(cfg.CatalogURL, cfg.Client.Timeout)
	cartSvc := service.NewCartService(repository.NewCartRepository(dbPool), catalog)

	router := server.NewRouter(cfg.Server, log)
	handler.NewHealthHandler("cart", dbPool, nil).Register(router)
	handler.NewCartHandler(cartSvc).Register(router)

	if err := server.Run(ctx, cfg.Server, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
