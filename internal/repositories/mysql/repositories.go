package mysql

import (
	"context"
	"database/sql"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type BookRepository struct{ db *sql.DB }

func NewBookRepository(db *sql.DB) *BookRepository { return &BookRepository{db: db} }

func (r *BookRepository) BulkCreate(ctx context.Context, books []*models.Book) error {
	return bulkInsert(ctx, r.db,
		"INSERT INTO books (book_id, title, author, genre, price, stock_qty) VALUES (?, ?, ?, ?, ?, ?)",
		len(books), func(i int) []any {
			b := books[i]
			return []any{b.ID, b.Title, b.Author, b.Genre, b.Price, b.StockQty}
		})
}

func (r *BookRepository) GetAll(ctx context.Context) ([]*models.Book, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT book_id, title, author, genre, price, stock_qty FROM books ORDER BY book_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		b := &models.Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Price, &b.StockQty); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) Count(ctx context.Context) (int, error) { return count(ctx, r.db, "books") }

func (r *BookRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM books")
	return err
}

type CustomerRepository struct{ db *sql.DB }

func NewCustomerRepository(db *sql.DB) *CustomerRepository { return &CustomerRepository{db: db} }

func (r *CustomerRepository) BulkCreate(ctx context.Context, customers []*models.Customer) error {
	return bulkInsert(ctx, r.db,
		"INSERT INTO customers (customer_id, name, email, city, signup_date) VALUES (?, ?, ?, ?, ?)",
		len(customers), func(i int) []any {
			c := customers[i]
			return []any{c.ID, c.Name, c.Email, c.City, c.SignupDate}
		})
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT customer_id, name, email, city, signup_date FROM customers ORDER BY customer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.City, &c.SignupDate); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "customers")
}

func (r *CustomerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM customers")
	return err
}

type OrderRepository struct{ db *sql.DB }

func NewOrderRepository(db *sql.DB) *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	return bulkInsert(ctx, r.db,
		"INSERT INTO orders (order_id, customer_id, book_id, quantity, order_date) VALUES (?, ?, ?, ?, ?)",
		len(orders), func(i int) []any {
			o := orders[i]
			return []any{o.ID, o.CustomerID, o.BookID, o.Quantity, o.OrderDate}
		})
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT order_id, customer_id, book_id, quantity, order_date FROM orders ORDER BY order_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.BookID, &o.Quantity, &o.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) { return count(ctx, r.db, "orders") }

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM orders")
	return err
}

type MarketingSpendRepository struct{ db *sql.DB }

func NewMarketingSpendRepository(db *sql.DB) *MarketingSpendRepository {
	return &MarketingSpendRepository{db: db}
}

func (r *MarketingSpendRepository) BulkCreate(ctx context.Context, spend []*models.MarketingSpend) error {
	return bulkInsert(ctx, r.db,
		"INSERT INTO marketing_spend (customer_id, channel, cost, spend_date) VALUES (?, ?, ?, ?)",
		len(spend), func(i int) []any {
			s := spend[i]
			return []any{s.CustomerID, s.Channel, s.Cost, s.Date}
		})
}

func (r *MarketingSpendRepository) GetAll(ctx context.Context) ([]*models.MarketingSpend, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT customer_id, channel, cost, spend_date FROM marketing_spend ORDER BY spend_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spend []*models.MarketingSpend
	for rows.Next() {
		s := &models.MarketingSpend{}
		if err := rows.Scan(&s.CustomerID, &s.Channel, &s.Cost, &s.Date); err != nil {
			return nil, err
		}
		spend = append(spend, s)
	}
	return spend, rows.Err()
}

func (r *MarketingSpendRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "marketing_spend")
}

func (r *MarketingSpendRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM marketing_spend")
	return err
}
