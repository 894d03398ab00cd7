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
	cfg, err := config.LoadCatalog()
	if err != nil {
		server.NewLogger(config.LogConfig{}, "catalog").Error("load config", "error", err)
		os.Exit(1)
	}
	log := server.NewLogger(cfg.Log, "catalog")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := server.OpenPool(ctx, cfg.DB, repository.ProductsSchema)
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
		log.Info("connected to Redis", "cache_ttl", cfg.ProductCacheTTL)
	}

	productSvc := service.NewProductService(repository.NewProductRepository(dbPool), redisClient, cfg.ProductCacheTTL)
	if cfg.Seed {
		n, err := productSvc.Seed(ctx)
		if err != nil {
			log.Error("seed catalog", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			log.Info("seeded sample products", "count", n)
		}
	}

	router := server.NewRouter(cfg.Server, log)
	handler.NewHealthHandler("catalog", dbPool, redisClient).Register(router)
	handler.NewProductHandler(productSvc).Register(router)

	if err := server.Run(ctx, cfg.Server, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
