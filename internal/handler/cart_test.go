package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/service"
)

type fakeCart struct {
	added    int
	userID   string
	quantity int
	err      error
}

func (f *fakeCart) GetCart(_ context.Context, userID string) (*model.Cart, error) {
	name, price := "Widget", decimal.RequireFromString("10.00")
	return &model.Cart{
		UserID: userID,
		Items: []model.CartItem{
			{ID: 1, UserID: userID, ProductID: 1, Quantity: 3, ProductName: &name, ProductPrice: &price},
			{ID: 2, UserID: userID, ProductID: 2, Quantity: 1},
		},
		Total: decimal.RequireFromString("30.00"),
	}, f.err
}

func (f *fakeCart) AddItem(_ context.Context, userID string, productID int64, quantity int) (*model.CartItem, error) {
	f.added++
	f.userID, f.quantity = userID, quantity
	if f.err != nil {
		return nil, f.err
	}
	return &model.CartItem{ID: 9, UserID: userID, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeCart) RemoveItem(context.Context, string, int64) error { return f.err }

func (f *fakeCart) UpdateQuantity(_ context.Context, _ string, _ int64, quantity int) error {
	f.quantity = quantity
	return f.err
}

func (f *fakeCart) ClearCart(context.Context, string) error { return nil }

func TestCartHandler_GetCart(t *testing.T) {
	r := newRouter(NewCartHandler(&fakeCart{}))

	w := do(t, r, http.MethodGet, "/cart/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, float64(30), body["total"])
	items := body["items"].([]any)
	assert.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].(map[string]any)["product_name"])
	assert.Nil(t, items[1].(map[string]any)["product_name"])
	assert.Nil(t, items[1].(map[string]any)["product_price"])
}

func TestCartHandler_AddItem(t *testing.T) {
	svc := &fakeCart{}
	r := newRouter(NewCartHandler(svc))

	w := do(t, r, http.MethodPost, "/cart/u1/items", map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.quantity)
	assert.Equal(t, "u1", svc.userID)

	w = do(t, r, http.MethodPost, "/cart/u1/items", map[string]any{"product_id": 1, "quantity": 4})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4, svc.quantity)

	w = do(t, r, http.MethodPost, "/cart/u1/items", map[string]any{"product_id": 1, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, svc.added)

	svc.err = service.ErrInsufficientStock
	w = do(t, r, http.MethodPost, "/cart/u1/items", map[string]any{"product_id": 1, "quantity": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient stock", decode(t, w)["error"])

	svc.err = service.ErrCatalogDown
	w = do(t, r, http.MethodPost, "/cart/u1/items", map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCartHandler_UpdateItem(t *testing.T) {
	svc := &fakeCart{}
	r := newRouter(NewCartHandler(svc))

	w := do(t, r, http.MethodPut, "/cart/u1/items/1?quantity=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item quantity updated", decode(t, w)["message"])
	assert.Equal(t, 5, svc.quantity)

	w = do(t, r, http.MethodPut, "/cart/u1/items/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = service.ErrInvalidQuantity
	w = do(t, r, http.MethodPut, "/cart/u1/items/1?quantity=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "quantity must be positive", decode(t, w)["error"])
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	svc := &fakeCart{}
	r := newRouter(NewCartHandler(svc))

	w := do(t, r, http.MethodDelete, "/cart/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cart cleared", decode(t, w)["message"])

	w = do(t, r, http.MethodDelete, "/cart/u1/items/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item removed from cart", decode(t, w)["message"])

	svc.err = service.ErrCartItemNotFound
	w = do(t, r, http.MethodDelete, "/cart/u1/items/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "item not found in cart", decode(t, w)["error"])
}
