// Package reports derives merchandising and marketing views from a bookstore snapshot:
// best sellers, low inventory, per-channel marketing return and genre performance.
// Every function is pure and validates the snapshot before reading it.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/models"
	"github.com/chrisdamba/bookrfm/internal/rfm"
)

var hundred = decimal.NewFromInt(100)

type bookSales struct {
	units   int
	revenue decimal.Decimal
}

// salesByBook sums units and revenue per book ID over all orders.
func salesByBook(s *models.Snapshot) map[string]*bookSales {
	books := s.BookIndex()
	sales := make(map[string]*bookSales)
	for _, o := range s.Orders {
		bs, ok := sales[o.BookID]
		if !ok {
			bs = &bookSales{}
			sales[o.BookID] = bs
		}
		bs.units += o.Quantity
		bs.revenue = bs.revenue.Add(books[o.BookID].Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
	}
	return sales
}

// BestSellers returns up to topN books that sold at least one unit, ordered by units sold,
// then revenue, both descending, then book ID.
func BestSellers(s *models.Snapshot, topN int) ([]models.BestSeller, error) {
	if err := rfm.Validate(s); err != nil {
		return nil, err
	}
	sales := salesByBook(s)

	out := make([]models.BestSeller, 0, len(sales))
	for _, b := range s.Books {
		bs, ok := sales[b.ID]
		if !ok {
			continue
		}
		out = append(out, models.BestSeller{
			BookID:    b.ID,
			Title:     b.Title,
			Author:    b.Author,
			Genre:     b.Genre,
			UnitsSold: bs.units,
			Revenue:   bs.revenue,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UnitsSold != b.UnitsSold {
			return a.UnitsSold > b.UnitsSold
		}
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.BookID < b.BookID
	})
	if topN >= 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// InventoryAlerts lists books whose stock is below threshold, lowest stock first. Books
// with equal stock are ordered by units sold descending, then book ID.
func InventoryAlerts(s *models.Snapshot, threshold int) ([]models.InventoryAlert, error) {
	if err := rfm.Validate(s); err != nil {
		return nil, err
	}
	sales := salesByBook(s)

	out := make([]models.InventoryAlert, 0)
	for _, b := range s.Books {
		if b.StockQty >= threshold {
			continue
		}
		alert := models.InventoryAlert{
			BookID:   b.ID,
			Title:    b.Title,
			StockQty: b.StockQty,
			Status:   models.InventoryStatusLowStock,
		}
		if b.StockQty == 0 {
			alert.Status = models.InventoryStatusOutOfStock
		}
		if bs, ok := sales[b.ID]; ok {
			alert.UnitsSold = bs.units
		}
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StockQty != b.StockQty {
			return a.StockQty < b.StockQty
		}
		if a.UnitsSold != b.UnitsSold {
			return a.UnitsSold > b.UnitsSold
		}
		return a.BookID < b.BookID
	})
	return out, nil
}

// GenrePerformance aggregates sales per genre. RevenueShare is the genre's percentage of
// total revenue rounded to two places; it is zero when nothing sold.
func GenrePerformance(s *models.Snapshot) ([]models.GenrePerformance, error) {
	if err := rfm.Validate(s); err != nil {
		return nil, err
	}
	sales := salesByBook(s)

	byGenre := make(map[string]*models.GenrePerformance)
	total := decimal.Zero
	for _, b := range s.Books {
		bs, ok := sales[b.ID]
		if !ok {
			continue
		}
		g, ok := byGenre[b.Genre]
		if !ok {
			g = &models.GenrePerformance{Genre: b.Genre}
			byGenre[b.Genre] = g
		}
		g.BooksSold++
		g.UnitsSold += bs.units
		g.Revenue = g.Revenue.Add(bs.revenue)
		total = total.Add(bs.revenue)
	}

	out := make([]models.GenrePerformance, 0, len(byGenre))
	for _, g := range byGenre {
		if total.IsPositive() {
			g.RevenueShare = g.Revenue.Mul(hundred).Div(total).Round(2)
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Genre < out[j].Genre
	})
	return out, nil
}
