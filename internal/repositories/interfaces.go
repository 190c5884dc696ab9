package repositories

import (
	"context"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type BookRepository interface {
	BulkCreate(ctx context.Context, books []*models.Book) error
	GetAll(ctx context.Context) ([]*models.Book, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type CustomerRepository interface {
	BulkCreate(ctx context.Context, customers []*models.Customer) error
	GetAll(ctx context.Context) ([]*models.Customer, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type OrderRepository interface {
	BulkCreate(ctx context.Context, orders []*models.Order) error
	GetAll(ctx context.Context) ([]*models.Order, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type MarketingSpendRepository interface {
	BulkCreate(ctx context.Context, spend []*models.MarketingSpend) error
	GetAll(ctx context.Context) ([]*models.MarketingSpend, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
