package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type MarketingSpendRepository struct {
	pool *pgxpool.Pool
}

func NewMarketingSpendRepository(pool *pgxpool.Pool) *MarketingSpendRepository {
	return &MarketingSpendRepository{pool: pool}
}

func (r *MarketingSpendRepository) BulkCreate(ctx context.Context, spend []*models.MarketingSpend) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"marketing_spend"},
		[]string{"customer_id", "channel", "cost", "spend_date"},
		pgx.CopyFromSlice(len(spend), func(i int) ([]interface{}, error) {
			return []interface{}{
				spend[i].CustomerID,
				spend[i].Channel,
				toNumeric(spend[i].Cost),
				spend[i].Date,
			}, nil
		}),
	)
	return err
}

func (r *MarketingSpendRepository) GetAll(ctx context.Context) ([]*models.MarketingSpend, error) {
	query := `
        SELECT customer_id, channel, cost, spend_date
        FROM marketing_spend
        ORDER BY spend_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spend []*models.MarketingSpend
	for rows.Next() {
		s := &models.MarketingSpend{}
		var cost pgtype.Numeric
		if err := rows.Scan(&s.CustomerID, &s.Channel, &cost, &s.Date); err != nil {
			return nil, err
		}
		if s.Cost, err = fromNumeric(cost); err != nil {
			return nil, fmt.Errorf("marketing spend for %s cost: %w", s.CustomerID, err)
		}
		spend = append(spend, s)
	}
	return spend, rows.Err()
}

func (r *MarketingSpendRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM marketing_spend").Scan(&count)
	return count, err
}

func (r *MarketingSpendRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE marketing_spend")
	return err
}
