package cmd

import (
	"context"
	"fmt"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/models"
	"github.com/chrisdamba/bookrfm/internal/repositories"
	"github.com/chrisdamba/bookrfm/internal/repositories/csvdir"
	"github.com/chrisdamba/bookrfm/internal/repositories/mysql"
	"github.com/chrisdamba/bookrfm/internal/repositories/postgres"
)

// openStore connects to the configured source. With createSchema the tables (or the csv
// directory) are created first.
func openStore(ctx context.Context, cfg *models.Config, createSchema bool) (*repositories.Store, error) {
	src := cfg.Source
	switch src.Kind {
	case models.SourcePostgres:
		pool, err := postgres.Connect(ctx, src.DSN, src.ConnectTimeout)
		if err != nil {
			return nil, errors.Source("failed to connect to postgres", err)
		}
		if createSchema {
			if err := postgres.CreateSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, errors.Source("failed to create schema", err)
			}
		}
		return repositories.NewStore(
			postgres.NewBookRepository(pool),
			postgres.NewCustomerRepository(pool),
			postgres.NewOrderRepository(pool),
			postgres.NewMarketingSpendRepository(pool),
			func() error { pool.Close(); return nil },
		), nil

	case models.SourceMySQL:
		db, err := mysql.Open(ctx, src.DSN, src.ConnectTimeout)
		if err != nil {
			return nil, errors.Source("failed to connect to mysql", err)
		}
		if createSchema {
			if err := mysql.CreateSchema(ctx, db); err != nil {
				db.Close()
				return nil, errors.Source("failed to create schema", err)
			}
		}
		return repositories.NewStore(
			mysql.NewBookRepository(db),
			mysql.NewCustomerRepository(db),
			mysql.NewOrderRepository(db),
			mysql.NewMarketingSpendRepository(db),
			db.Close,
		), nil

	case models.SourceCSV:
		store, err := csvdir.Open(src.CSVDir, createSchema)
		if err != nil {
			return nil, errors.Source("failed to open csv directory", err).WithContext("dir", src.CSVDir)
		}
		return store, nil

	default:
		return nil, errors.Config(fmt.Sprintf("unsupported source kind: %q", src.Kind))
	}
}

// loadSnapshot reads the whole input once and releases the store.
func loadSnapshot(ctx context.Context, cfg *models.Config) (*models.Snapshot, error) {
	store, err := openStore(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return repositories.LoadSnapshot(ctx, store)
}
