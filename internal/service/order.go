package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-shop-services/internal/apperr"
	"github.com/flicky/go-shop-services/internal/client"
	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/lock"
	"github.com/flicky/go-shop-services/internal/model"
	"github.com/flicky/go-shop-services/internal/repository"
)

var (
	ErrCartNotFound       = apperr.NotFound("cart not found")
	ErrEmptyCart          = apperr.InvalidArgument("cart is empty")
	ErrOrderNotFound      = apperr.NotFound("order not found")
	ErrInvalidStatus      = apperr.InvalidArgument("invalid order status")
	ErrOrderNotPending    = apperr.InvalidState("order is not in pending status")
	ErrCheckoutInProgress = apperr.InvalidState("checkout already in progress")
	ErrPaymentDown        = apperr.UpstreamUnavailable("payment service unavailable")
	ErrPaymentFailed      = apperr.PaymentFailed("payment failed")
)

const unknownProductName = "Unknown"

type CartGateway interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type PaymentGateway interface {
	CreatePayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*model.Payment, error)
}

// Emitter sends a best-effort notification; it must not block.
type Emitter interface {
	Emit(eventType string, data map[string]any)
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

type OrderService struct {
	orderRepo repository.OrderRepository
	cart      CartGateway
	payment   PaymentGateway
	events    Emitter
	locker    Locker
	log       *slog.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, cart CartGateway, payment PaymentGateway, events Emitter, log *slog.Logger) *OrderService {
	return &OrderService{orderRepo: orderRepo, cart: cart, payment: payment, events: events, log: log}
}

// WithCheckoutLock serializes create-order per user through l.
func (s *OrderService) WithCheckoutLock(l Locker) *OrderService {
	s.locker = l
	return s
}

// CreateOrder turns the user's cart into a pending order. The steps run in
// sequence and each one commits on its own:
//
//  1. read the cart (any failure: cart not found)
//  2. reject an empty cart
//  3. snapshot the lines and the cart's reported total
//  4. store the order as pending
//  5. clear the cart; a failure here is logged and the order stands
//  6. re-read the order and emit order_created
//
// Without a checkout lock two concurrent calls for one user can both read
// the cart before either clears it and create two orders.
func (s *OrderService) CreateOrder(ctx context.Context, userID string) (*model.Order, error) {
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, userID)
		if err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return nil, ErrCheckoutInProgress
			}
			return nil, fmt.Errorf("checkout lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("release checkout lock failed", "user_id", userID, "error", err)
			}
		}()
	}

	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, ErrCartNotFound.Wrap(err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		UserID:      userID,
		Status:      model.OrderStatusPending,
		TotalAmount: cart.Total,
		Items:       snapshotItems(cart.Items),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.cart.ClearCart(ctx, userID); err != nil {
		s.log.Warn("clear cart after order failed", "order_id", order.ID, "user_id", userID, "error", err)
	}

	stored, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.events.Emit(model.EventOrderCreated, map[string]any{
		"order_id":     stored.ID,
		"user_id":      stored.UserID,
		"total_amount": stored.TotalAmount.String(),
	})
	return stored, nil
}

// snapshotItems freezes cart lines; a line the catalog could not resolve is
// kept under "Unknown" at price zero.
func snapshotItems(lines []model.CartItem) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := model.OrderItem{
			ProductID:   line.ProductID,
			ProductName: unknownProductName,
			Quantity:    line.Quantity,
			Price:       decimal.Zero,
		}
		if line.ProductName != nil {
			item.ProductName = *line.ProductName
		}
		if line.ProductPrice != nil {
			item.Price = *line.ProductPrice
		}
		items = append(items, item)
	}
	return items
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) List(ctx context.Context, page dto.PageRequest) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets any known status; transitions are not checked.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Emit(model.EventOrderStatusUpdated, map[string]any{
		"order_id": order.ID,
		"status":   string(order.Status),
	})
	return order, nil
}

// ProcessPayment charges the frozen total of a pending order and marks it
// paid. A declined charge leaves the order pending.
func (s *OrderService) ProcessPayment(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	payment, err := s.payment.CreatePayment(ctx, order.ID, order.TotalAmount)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return nil, ErrPaymentDown.Wrap(err)
		}
		return nil, ErrPaymentFailed.Wrap(err)
	}
	if payment.Status != model.PaymentStatusSuccess {
		s.log.Info("payment declined", "order_id", order.ID, "payment_id", payment.ID, "status", payment.Status)
		return nil, ErrPaymentFailed
	}

	if err := s.orderRepo.MarkPaid(ctx, order.ID, payment.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	paid, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.events.Emit(model.EventOrderPaid, map[string]any{
		"order_id":   paid.ID,
		"payment_id": payment.ID,
	})
	return paid, nil
}
