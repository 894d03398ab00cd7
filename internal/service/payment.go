package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-shop-services/internal/apperr"
	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/repository"
)

var ErrPaymentNotFound = apperr.NotFound("payment not found")

// Gateway decides the outcome of a charge.
type Gateway interface {
	Charge(ctx context.Context, orderID int64, amount decimal.Decimal) model.PaymentStatus
}

// SimulatedGateway succeeds with probability rate. No money moves.
type SimulatedGateway struct {
	rate float64
	draw func() float64
}

func NewSimulatedGateway(rate float64) *SimulatedGateway {
	return &SimulatedGateway{rate: rate, draw: rand.Float64}
}

func (g *SimulatedGateway) Charge(_ context.Context, _ int64, _ decimal.Decimal) model.PaymentStatus {
	if g.draw() < g.rate {
		return model.PaymentStatusSuccess
	}
	return model.PaymentStatusFailed
}

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	gateway     Gateway
}

func NewPaymentService(paymentRepo repository.PaymentRepository, gateway Gateway) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, gateway: gateway}
}

// CreatePayment charges amount for the order and stores the outcome. A
// declined charge is still a stored payment with status failed.
func (s *PaymentService) CreatePayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*model.Payment, error) {
	payment := &model.Payment{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Amount:  amount,
		Status:  s.gateway.Charge(ctx, orderID, amount),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) GetLatestForOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetLatestByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get payment for order: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}
