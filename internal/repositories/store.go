package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
)

// Store bundles the four table repositories of one storage backend.
type Store struct {
	Books          BookRepository
	Customers      CustomerRepository
	Orders         OrderRepository
	MarketingSpend MarketingSpendRepository

	closeFn func() error
}

func NewStore(books BookRepository, customers CustomerRepository, orders OrderRepository, spend MarketingSpendRepository, closeFn func() error) *Store {
	return &Store{
		Books:          books,
		Customers:      customers,
		Orders:         orders,
		MarketingSpend: spend,
		closeFn:        closeFn,
	}
}

func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// LoadSnapshot reads the four tables concurrently. The first failing read cancels the others.
func LoadSnapshot(ctx context.Context, s *Store) (*models.Snapshot, error) {
	start := time.Now()
	snap := &models.Snapshot{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Books, err = s.Books.GetAll(ctx)
		return wrapSource("books", err)
	})
	g.Go(func() (err error) {
		snap.Customers, err = s.Customers.GetAll(ctx)
		return wrapSource("customers", err)
	})
	g.Go(func() (err error) {
		snap.Orders, err = s.Orders.GetAll(ctx)
		return wrapSource("orders", err)
	})
	g.Go(func() (err error) {
		snap.MarketingSpend, err = s.MarketingSpend.GetAll(ctx)
		return wrapSource("marketing_spend", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Info("snapshot loaded",
		zap.Int("books", len(snap.Books)),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("marketing_spend", len(snap.MarketingSpend)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// SaveSnapshot writes snap in parent-first order (books and customers before the rows
// referencing them) in batches of batchSize. When truncate is set the existing rows are
// removed child-first beforehand. progress, if not nil, receives the size of each batch.
func SaveSnapshot(ctx context.Context, s *Store, snap *models.Snapshot, batchSize int, truncate bool, progress func(n int)) error {
	if batchSize < 1 {
		batchSize = len(snap.Books) + len(snap.Customers) + len(snap.Orders) + len(snap.MarketingSpend) + 1
	}
	if progress == nil {
		progress = func(int) {}
	}

	if truncate {
		steps := []struct {
			table string
			fn    func(context.Context) error
		}{
			{"marketing_spend", s.MarketingSpend.DeleteAll},
			{"orders", s.Orders.DeleteAll},
			{"customers", s.Customers.DeleteAll},
			{"books", s.Books.DeleteAll},
		}
		for _, st := range steps {
			if err := st.fn(ctx); err != nil {
				return errors.Wrapf(errors.TypeSource, err, "truncate %s", st.table)
			}
		}
	}

	if err := inBatches(snap.Books, batchSize, progress, func(b []*models.Book) error {
		return wrapSource("books", s.Books.BulkCreate(ctx, b))
	}); err != nil {
		return err
	}
	if err := inBatches(snap.Customers, batchSize, progress, func(b []*models.Customer) error {
		return wrapSource("customers", s.Customers.BulkCreate(ctx, b))
	}); err != nil {
		return err
	}
	if err := inBatches(snap.Orders, batchSize, progress, func(b []*models.Order) error {
		return wrapSource("orders", s.Orders.BulkCreate(ctx, b))
	}); err != nil {
		return err
	}
	return inBatches(snap.MarketingSpend, batchSize, progress, func(b []*models.MarketingSpend) error {
		return wrapSource("marketing_spend", s.MarketingSpend.BulkCreate(ctx, b))
	})
}

func inBatches[T any](rows []T, size int, progress func(int), write func([]T) error) error {
	for lo := 0; lo < len(rows); lo += size {
		hi := min(lo+size, len(rows))
		if err := write(rows[lo:hi]); err != nil {
			return err
		}
		progress(hi - lo)
	}
	return nil
}

func wrapSource(table string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Source("table "+table, err).WithContext("table", table)
}
