package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Each service owns exactly one table and creates it on startup.
const (
	ProductsSchema = `CREATE TABLE IF NOT EXISTS products (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT,
		price       NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
		stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category    TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	CartItemsSchema = `CREATE TABLE IF NOT EXISTS cart_items (
		id         BIGSERIAL PRIMARY KEY,
		user_id    TEXT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, product_id)
	)`

	OrdersSchema = `CREATE TABLE IF NOT EXISTS orders (
		id           BIGSERIAL PRIMARY KEY,
		user_id      TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		total_amount NUMERIC(12, 2) NOT NULL,
		items        JSONB NOT NULL,
		payment_id   TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`

	PaymentsSchema = `CREATE TABLE IF NOT EXISTS payments (
		id         TEXT PRIMARY KEY,
		order_id   BIGINT NOT NULL,
		amount     NUMERIC(12, 2) NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS payments_order_id_idx ON payments (order_id, created_at DESC)`
)

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, ddl string) error {
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
