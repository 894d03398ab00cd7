package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-shop-services/internal/apperr"
	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/repository"
)

var (
	ErrProductNotFound = apperr.NotFound("product not found")
	ErrNoFieldsToPatch = apperr.InvalidArgument("no fields to update")
	ErrNegativePrice   = apperr.InvalidArgument("price must not be negative")
)

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewProductService builds the catalog service. redisClient may be nil, in
// which case reads always go to the repository.
func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client, cacheTTL time.Duration) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient, cacheTTL: cacheTTL}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price == nil || req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	key := cacheKey(id)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, key).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, key, data, s.cacheTTL)
		}
	}

	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, page dto.PageRequest) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return items, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	patch := model.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if patch.Empty() {
		return nil, ErrNoFieldsToPatch
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	product, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	s.invalidateCache(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

// Seed inserts the sample catalog when the table is empty and reports how
// many products it created.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, p := range sampleProducts() {
		if err := s.productRepo.Create(ctx, &p); err != nil {
			return 0, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return len(sampleProducts()), nil
}

func sampleProducts() []model.Product {
	electronics := "Electronics"
	product := func(name, desc, price string, stock int) model.Product {
		return model.Product{
			Name:        name,
			Description: &desc,
			Price:       decimal.RequireFromString(price),
			Stock:       stock,
			Category:    &electronics,
		}
	}
	return []model.Product{
		product("Laptop", "High-performance laptop", "999.99", 10),
		product("Mouse", "Wireless mouse", "29.99", 50),
		product("Keyboard", "Mechanical keyboard", "79.99", 30),
		product("Monitor", "27-inch 4K monitor", "399.99", 15),
	}
}

func (s *ProductService) invalidateCache(ctx context.Context, id int64) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, cacheKey(id))
	}
}

func cacheKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}
