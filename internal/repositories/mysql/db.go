// Package mysql reads and writes the bookstore tables on MySQL or MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open accepts mariadb:// or mysql:// URLs as well as native driver DSNs.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*sql.DB, error) {
	driverDSN, err := toDriverDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", driverDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

func toDriverDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn: user, host and database are required")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, db), nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS books (
    book_id   VARCHAR(64) PRIMARY KEY,
    title     VARCHAR(255) NOT NULL,
    author    VARCHAR(255) NOT NULL,
    genre     VARCHAR(64) NOT NULL,
    price     DECIMAL(10, 2) NOT NULL,
    stock_qty INT NOT NULL
);
CREATE TABLE IF NOT EXISTS customers (
    customer_id VARCHAR(64) PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    email       VARCHAR(255) NOT NULL,
    city        VARCHAR(128) NOT NULL DEFAULT '',
    signup_date DATE NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
    order_id    VARCHAR(64) PRIMARY KEY,
    customer_id VARCHAR(64) NOT NULL,
    book_id     VARCHAR(64) NOT NULL,
    quantity    INT NOT NULL,
    order_date  DATE NOT NULL,
    INDEX idx_orders_customer_id (customer_id),
    INDEX idx_orders_book_id (book_id)
);
CREATE TABLE IF NOT EXISTS marketing_spend (
    spend_id    BIGINT AUTO_INCREMENT PRIMARY KEY,
    customer_id VARCHAR(64) NOT NULL,
    channel     VARCHAR(32) NOT NULL,
    cost        DECIMAL(10, 2) NOT NULL,
    spend_date  DATE NOT NULL
)`

// CreateSchema runs the DDL one statement at a time; the driver rejects multi-statement
// strings unless multiStatements is enabled.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaDDL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// bulkInsert runs one prepared insert per row inside a single transaction.
func bulkInsert(ctx context.Context, db *sql.DB, query string, n int, args func(i int) []any) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func count(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}
