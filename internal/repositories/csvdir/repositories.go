package csvdir

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/models"
)

// CheckDir fails unless dir exists and is a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

type BookRepository struct{ t *table }

func NewBookRepository(dir string) *BookRepository {
	return &BookRepository{t: newTable(dir, BooksFile, "book_id", "title", "author", "genre", "price", "stock_qty")}
}

func (r *BookRepository) BulkCreate(_ context.Context, books []*models.Book) error {
	rows := make([][]string, len(books))
	for i, b := range books {
		rows[i] = []string{b.ID, b.Title, b.Author, b.Genre, b.Price.StringFixed(2), strconv.Itoa(b.StockQty)}
	}
	return r.t.appendRows(rows)
}

func (r *BookRepository) GetAll(_ context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.t.read(func(_ int, row map[string]string) error {
		price, err := decimal.NewFromString(row["price"])
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		stock, err := strconv.Atoi(row["stock_qty"])
		if err != nil {
			return fmt.Errorf("stock_qty: %w", err)
		}
		books = append(books, &models.Book{
			ID:       row["book_id"],
			Title:    row["title"],
			Author:   row["author"],
			Genre:    row["genre"],
			Price:    price,
			StockQty: stock,
		})
		return nil
	})
	return books, err
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	books, err := r.GetAll(ctx)
	return len(books), err
}

func (r *BookRepository) DeleteAll(_ context.Context) error { return r.t.remove() }

type CustomerRepository struct{ t *table }

func NewCustomerRepository(dir string) *CustomerRepository {
	return &CustomerRepository{t: newTable(dir, CustomersFile, "customer_id", "name", "email", "city", "signup_date")}
}

func (r *CustomerRepository) BulkCreate(_ context.Context, customers []*models.Customer) error {
	rows := make([][]string, len(customers))
	for i, c := range customers {
		rows[i] = []string{c.ID, c.Name, c.Email, c.City, formatDate(c.SignupDate)}
	}
	return r.t.appendRows(rows)
}

func (r *CustomerRepository) GetAll(_ context.Context) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := r.t.read(func(_ int, row map[string]string) error {
		signup, err := parseDate(row["signup_date"])
		if err != nil {
			return fmt.Errorf("signup_date: %w", err)
		}
		customers = append(customers, &models.Customer{
			ID:         row["customer_id"],
			Name:       row["name"],
			Email:      row["email"],
			City:       row["city"],
			SignupDate: signup,
		})
		return nil
	})
	return customers, err
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	customers, err := r.GetAll(ctx)
	return len(customers), err
}

func (r *CustomerRepository) DeleteAll(_ context.Context) error { return r.t.remove() }

type OrderRepository struct{ t *table }

func NewOrderRepository(dir string) *OrderRepository {
	return &OrderRepository{t: newTable(dir, OrdersFile, "order_id", "customer_id", "book_id", "quantity", "order_date")}
}

func (r *OrderRepository) BulkCreate(_ context.Context, orders []*models.Order) error {
	rows := make([][]string, len(orders))
	for i, o := range orders {
		rows[i] = []string{o.ID, o.CustomerID, o.BookID, strconv.Itoa(o.Quantity), formatDate(o.OrderDate)}
	}
	return r.t.appendRows(rows)
}

func (r *OrderRepository) GetAll(_ context.Context) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.t.read(func(_ int, row map[string]string) error {
		qty, err := strconv.Atoi(row["quantity"])
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		date, err := parseDate(row["order_date"])
		if err != nil {
			return fmt.Errorf("order_date: %w", err)
		}
		orders = append(orders, &models.Order{
			ID:         row["order_id"],
			CustomerID: row["customer_id"],
			BookID:     row["book_id"],
			Quantity:   qty,
			OrderDate:  date,
		})
		return nil
	})
	return orders, err
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	orders, err := r.GetAll(ctx)
	return len(orders), err
}

func (r *OrderRepository) DeleteAll(_ context.Context) error { return r.t.remove() }

type MarketingSpendRepository struct{ t *table }

func NewMarketingSpendRepository(dir string) *MarketingSpendRepository {
	return &MarketingSpendRepository{t: newTable(dir, MarketingSpendFile, "customer_id", "channel", "cost", "spend_date")}
}

func (r *MarketingSpendRepository) BulkCreate(_ context.Context, spend []*models.MarketingSpend) error {
	rows := make([][]string, len(spend))
	for i, s := range spend {
		rows[i] = []string{s.CustomerID, s.Channel, s.Cost.StringFixed(2), formatDate(s.Date)}
	}
	return r.t.appendRows(rows)
}

func (r *MarketingSpendRepository) GetAll(_ context.Context) ([]*models.MarketingSpend, error) {
	var spend []*models.MarketingSpend
	err := r.t.read(func(_ int, row map[string]string) error {
		cost, err := decimal.NewFromString(row["cost"])
		if err != nil {
			return fmt.Errorf("cost: %w", err)
		}
		date, err := parseDate(row["spend_date"])
		if err != nil {
			return fmt.Errorf("spend_date: %w", err)
		}
		spend = append(spend, &models.MarketingSpend{
			CustomerID: row["customer_id"],
			Channel:    row["channel"],
			Cost:       cost,
			Date:       date,
		})
		return nil
	})
	return spend, err
}

func (r *MarketingSpendRepository) Count(ctx context.Context) (int, error) {
	spend, err := r.GetAll(ctx)
	return len(spend), err
}

func (r *MarketingSpendRepository) DeleteAll(_ context.Context) error { return r.t.remove() }
