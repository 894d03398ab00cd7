package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
)

type CartClient struct{ baseClient }

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{newBaseClient("cart", baseURL, timeout)}
}

func (c *CartClient) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	var resp dto.CartResponse
	if err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}

	cart := &model.Cart{UserID: resp.UserID, Total: resp.Total, Items: make([]model.CartItem, 0, len(resp.Items))}
	for _, it := range resp.Items {
		cart.Items = append(cart.Items, model.CartItem{
			ID:           it.ID,
			UserID:       it.UserID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			CreatedAt:    it.CreatedAt,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
		})
	}
	return cart, nil
}

func (c *CartClient) ClearCart(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID), nil, nil)
}
