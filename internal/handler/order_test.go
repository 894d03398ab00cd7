package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/service"
)

type fakeOrders struct {
	status model.OrderStatus
	page   dto.PageRequest
	err    error
}

func sampleOrder(id int64, status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:          id,
		UserID:      "u1",
		Status:      status,
		TotalAmount: decimal.RequireFromString("30.00"),
		Items: []model.OrderItem{
			{ProductID: 1, ProductName: "Widget", Quantity: 3, Price: decimal.RequireFromString("10.00")},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (f *fakeOrders) CreateOrder(_ context.Context, userID string) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := sampleOrder(1, model.OrderStatusPending)
	o.UserID = userID
	return o, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return sampleOrder(id, model.OrderStatusPending), nil
}

func (f *fakeOrders) ListByUser(context.Context, string) ([]model.Order, error) {
	return nil, f.err
}

func (f *fakeOrders) List(_ context.Context, page dto.PageRequest) ([]model.Order, error) {
	f.page = page
	return []model.Order{*sampleOrder(2, model.OrderStatusPaid), *sampleOrder(1, model.OrderStatusPending)}, f.err
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	f.status = status
	if f.err != nil {
		return nil, f.err
	}
	return sampleOrder(id, status), nil
}

func (f *fakeOrders) ProcessPayment(_ context.Context, id int64) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := sampleOrder(id, model.OrderStatusPaid)
	pid := "pay-1"
	o.PaymentID = &pid
	return o, nil
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	svc := &fakeOrders{}
	r := newRouter(NewOrderHandler(svc))

	w := do(t, r, http.MethodPost, "/orders", map[string]any{"user_id": "u1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(30), body["total_amount"])
	assert.Contains(t, w.Body.String(), `"total_amount":30`)
	assert.Nil(t, body["payment_id"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), items[0].(map[string]any)["quantity"])

	w = do(t, r, http.MethodPost, "/orders", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = service.ErrEmptyCart
	w = do(t, r, http.MethodPost, "/orders", map[string]any{"user_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart is empty", decode(t, w)["error"])

	svc.err = service.ErrCartNotFound
	w = do(t, r, http.MethodPost, "/orders", map[string]any{"user_id": "u1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_Lists(t *testing.T) {
	svc := &fakeOrders{}
	r := newRouter(NewOrderHandler(svc))

	w := do(t, r, http.MethodGet, "/orders/user/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/orders?skip=1&limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.PageRequest{Skip: 1, Limit: 10}, svc.page)

	w = do(t, r, http.MethodGet, "/orders/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["id"])
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := &fakeOrders{}
	r := newRouter(NewOrderHandler(svc))

	w := do(t, r, http.MethodPut, "/orders/1/status?status=shipped", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.OrderStatusShipped, svc.status)

	w = do(t, r, http.MethodPut, "/orders/1/status", map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.OrderStatusCancelled, svc.status)

	svc.err = service.ErrInvalidStatus
	w = do(t, r, http.MethodPut, "/orders/1/status?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_ProcessPayment(t *testing.T) {
	svc := &fakeOrders{}
	r := newRouter(NewOrderHandler(svc))

	w := do(t, r, http.MethodPost, "/orders/1/payment", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, "pay-1", body["payment_id"])

	svc.err = service.ErrOrderNotPending
	w = do(t, r, http.MethodPost, "/orders/1/payment", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order is not in pending status", decode(t, w)["error"])

	svc.err = service.ErrPaymentFailed
	w = do(t, r, http.MethodPost, "/orders/1/payment", nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	svc.err = service.ErrPaymentDown
	w = do(t, r, http.MethodPost, "/orders/1/payment", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
