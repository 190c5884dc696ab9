package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) BulkCreate(ctx context.Context, customers []*models.Customer) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"customers"},
		[]string{"customer_id", "name", "email", "city", "signup_date"},
		pgx.CopyFromSlice(len(customers), func(i int) ([]interface{}, error) {
			return []interface{}{
				customers[i].ID,
				customers[i].Name,
				customers[i].Email,
				customers[i].City,
				customers[i].SignupDate,
			}, nil
		}),
	)
	return err
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]*models.Customer, error) {
	query := `
        SELECT customer_id, name, email, city, signup_date
        FROM customers
        ORDER BY customer_id`

	rows, err := r.pool.Query(ctx, query)
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
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&count)
	return count, err
}

func (r *CustomerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE customers CASCADE")
	return err
}
