package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-shop-services/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetLatestByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
}

type pgPaymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &pgPaymentRepo{pool: pool}
}

func (r *pgPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (id, order_id, amount, status) VALUES ($1, $2, $3, $4) RETURNING amount, created_at`,
		payment.ID, payment.OrderID, payment.Amount, payment.Status,
	).Scan(&payment.Amount, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *pgPaymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.getOne(ctx,
		`SELECT id, order_id, amount, status, created_at FROM payments WHERE id = $1`, id)
}

func (r *pgPaymentRepo) GetLatestByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	return r.getOne(ctx,
		`SELECT id, order_id, amount, status, created_at FROM payments
		 WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID)
}

func (r *pgPaymentRepo) getOne(ctx context.Context, query string, arg any) (*model.Payment, error) {
	p := &model.Payment{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}
