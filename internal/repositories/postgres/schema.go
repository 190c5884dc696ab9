package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS books (
    book_id     TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    author      TEXT NOT NULL,
    genre       TEXT NOT NULL,
    price       NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
    stock_qty   INTEGER NOT NULL CHECK (stock_qty >= 0)
);

CREATE TABLE IF NOT EXISTS customers (
    customer_id TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT NOT NULL,
    city        TEXT NOT NULL DEFAULT '',
    signup_date DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    order_id    TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL REFERENCES customers (customer_id),
    book_id     TEXT NOT NULL REFERENCES books (book_id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    order_date  DATE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders (customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_book_id ON orders (book_id);

CREATE TABLE IF NOT EXISTS marketing_spend (
    spend_id    BIGSERIAL PRIMARY KEY,
    customer_id TEXT NOT NULL REFERENCES customers (customer_id),
    channel     TEXT NOT NULL,
    cost        NUMERIC(10, 2) NOT NULL CHECK (cost >= 0),
    spend_date  DATE NOT NULL
);
`

// CreateSchema creates the four input tables when they do not exist yet.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
