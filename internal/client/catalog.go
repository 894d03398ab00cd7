package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
)

type CatalogClient struct{ baseClient }

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{newBaseClient("catalog", baseURL, timeout)}
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}, nil
}
