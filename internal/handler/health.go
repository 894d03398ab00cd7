package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-shop-services/internal/dto"
)

type Check func(ctx context.Context) error

type HealthHandler struct {
	service string
	checks  map[string]Check
}

// NewHealthHandler reports on the pool and, when non-nil, on Redis.
func NewHealthHandler(service string, dbPool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	checks := map[string]Check{"postgres": dbPool.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return &HealthHandler{service: service, checks: checks}
}

func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Service: h.service})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{"service": h.service}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			body[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "connected"
	}

	if status == http.StatusOK {
		body["status"] = "ok"
	} else {
		body["status"] = "error"
	}
	c.JSON(status, body)
}
