package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/flicky/go-shop-services/internal/apperr"
	"github.com/flicky/go-shop-services/internal/client"
	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/repository"
)

var (
	ErrCartItemNotFound  = apperr.NotFound("item not found in cart")
	ErrInvalidQuantity   = apperr.InvalidArgument("quantity must be positive")
	ErrInsufficientStock = apperr.InsufficientStock("insufficient stock")
	ErrCatalogDown       = apperr.UpstreamUnavailable("catalog service unavailable")
)

// Concurrent catalog lookups per get-cart call.
const enrichConcurrency = 8

type CatalogLookup interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

type CartService struct {
	cartRepo repository.CartRepository
	catalog  CatalogLookup
}

func NewCartService(cartRepo repository.CartRepository, catalog CatalogLookup) *CartService {
	return &CartService{cartRepo: cartRepo, catalog: catalog}
}

// GetCart returns the user's rows enriched with catalog name and price.
// A row whose lookup fails keeps null name/price and adds nothing to the
// total; the cart itself never fails because of the catalog.
func (s *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	products := make([]*model.Product, len(items))
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i, item := range items {
		g.Go(func() error {
			if p, err := s.catalog.GetProduct(ctx, item.ProductID); err == nil {
				products[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	total := decimal.Zero
	for i := range items {
		p := products[i]
		if p == nil {
			continue
		}
		enrich(&items[i], p)
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}

	if items == nil {
		items = []model.CartItem{}
	}
	return &model.Cart{UserID: userID, Items: items, Total: total}, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, ErrCatalogDown.Wrap(err)
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	item := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	enrich(item, product)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64) error {
	if err := s.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

// ClearCart succeeds whether or not the user has any rows.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func enrich(item *model.CartItem, p *model.Product) {
	name, price := p.Name, p.Price
	item.ProductName = &name
	item.ProductPrice = &price
}
