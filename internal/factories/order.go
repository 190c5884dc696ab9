package factories

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type OrderFactory struct {
	rng   *rand.Rand
	id    IDFunc
	start time.Time
	end   time.Time
	seq   int
}

// CreateOrders returns the orders one customer places under profile.
func (of *OrderFactory) CreateOrders(customer *models.Customer, profile PurchaseProfile, books []*models.Book) []*models.Order {
	if len(books) == 0 {
		return nil
	}
	n := profile.MinOrders
	if profile.MaxOrders > profile.MinOrders {
		n += of.rng.Intn(profile.MaxOrders - profile.MinOrders + 1)
	}

	orders := make([]*models.Order, 0, n)
	for i := 0; i < n; i++ {
		of.seq++
		orders = append(orders, &models.Order{
			ID:         of.id("o", of.seq),
			CustomerID: customer.ID,
			BookID:     books[of.rng.Intn(len(books))].ID,
			Quantity:   of.rng.Intn(max(profile.MaxQty, 1)) + 1,
			OrderDate:  of.orderDate(profile),
		})
	}
	return orders
}

func (of *OrderFactory) orderDate(profile PurchaseProfile) time.Time {
	span := daysBetween(of.start, of.end)
	if profile.RecentDays < 0 {
		return of.start.AddDate(0, 0, of.rng.Intn(span/4+1))
	}
	window := min(profile.RecentDays, span)
	return of.end.AddDate(0, 0, -of.rng.Intn(window+1))
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
