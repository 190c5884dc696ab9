package rfm

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type partial struct {
	last   time.Time
	orders map[string]struct{}
	spent  decimal.Decimal
}

func (p *partial) merge(o *partial) {
	if o.last.After(p.last) {
		p.last = o.last
	}
	for id := range o.orders {
		p.orders[id] = struct{}{}
	}
	p.spent = p.spent.Add(o.spent)
}

// Aggregate builds one CustomerMetrics row per customer that placed at least one order,
// sorted by customer ID. Orders are split into contiguous chunks across workers; the
// partial sums are merged before returning, so the result does not depend on workers.
func Aggregate(s *models.Snapshot, workers int) ([]models.CustomerMetrics, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(s.Orders) {
		workers = max(len(s.Orders), 1)
	}

	books := s.BookIndex()
	chunk := (len(s.Orders) + workers - 1) / workers
	parts := make([]map[string]*partial, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := min(w*chunk, len(s.Orders))
		hi := min(lo+chunk, len(s.Orders))
		g.Go(func() error {
			acc := make(map[string]*partial)
			for _, o := range s.Orders[lo:hi] {
				book, ok := books[o.BookID]
				if !ok {
					return fmt.Errorf("order %s: book %s vanished from index", o.ID, o.BookID)
				}
				p, ok := acc[o.CustomerID]
				if !ok {
					p = &partial{orders: make(map[string]struct{})}
					acc[o.CustomerID] = p
				}
				if o.OrderDate.After(p.last) {
					p.last = o.OrderDate
				}
				p.orders[o.ID] = struct{}{}
				p.spent = p.spent.Add(book.Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
			}
			parts[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]*partial)
	for _, part := range parts {
		for id, p := range part {
			if m, ok := merged[id]; ok {
				m.merge(p)
			} else {
				merged[id] = p
			}
		}
	}

	customers := s.CustomerIndex()
	out := make([]models.CustomerMetrics, 0, len(merged))
	for id, p := range merged {
		out = append(out, models.CustomerMetrics{
			CustomerID:        id,
			Name:              customers[id].Name,
			LastPurchaseDate:  p.last,
			PurchaseFrequency: len(p.orders),
			TotalSpent:        p.spent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}
