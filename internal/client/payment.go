package client

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
)

type PaymentClient struct{ baseClient }

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{newBaseClient("payment", baseURL, timeout)}
}

func (c *PaymentClient) CreatePayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*model.Payment, error) {
	req := dto.CreatePaymentRequest{OrderID: orderID, Amount: &amount}
	var resp dto.PaymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments", req, &resp); err != nil {
		return nil, err
	}
	return &model.Payment{
		ID:        resp.ID,
		OrderID:   resp.OrderID,
		Amount:    resp.Amount,
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt,
	}, nil
}
