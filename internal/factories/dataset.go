package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/bookrfm/internal/models"
)

// Generator builds complete snapshots. Two generators built from the same config and
// sequential IDs produce identical snapshots.
type Generator struct {
	cfg      models.SeedConfig
	profiles []PurchaseProfile

	books     *BookFactory
	customers *CustomerFactory
	orders    *OrderFactory
	spend     *MarketingSpendFactory
	rng       *rand.Rand
}

func NewGenerator(cfg models.SeedConfig) (*Generator, error) {
	if cfg.Books < 1 || cfg.Customers < 1 {
		return nil, fmt.Errorf("seed needs at least one book and one customer, got %d and %d", cfg.Books, cfg.Customers)
	}
	if cfg.MarketingRows < 0 {
		return nil, fmt.Errorf("seed.marketing_rows must not be negative")
	}
	if !cfg.EndDate.After(cfg.StartDate) {
		return nil, fmt.Errorf("seed.end_date must be after seed.start_date")
	}
	id, err := IDFuncFor(cfg.IDStyle)
	if err != nil {
		return nil, err
	}

	start := truncateDay(cfg.StartDate)
	end := truncateDay(cfg.EndDate)
	rng := rand.New(rand.NewSource(cfg.Seed))
	fake := faker.NewWithSeed(rand.NewSource(cfg.Seed))

	return &Generator{
		cfg:       cfg,
		profiles:  DefaultProfiles,
		books:     &BookFactory{fake: fake, rng: rng, id: id},
		customers: &CustomerFactory{fake: fake, rng: rng, id: id, start: start},
		orders:    &OrderFactory{rng: rng, id: id, start: start, end: end},
		spend:     &MarketingSpendFactory{rng: rng, start: start, end: end},
		rng:       rng,
	}, nil
}

// Generate returns a snapshot whose orders and spend only reference generated rows.
func (g *Generator) Generate() *models.Snapshot {
	snap := &models.Snapshot{
		Books:          make([]*models.Book, 0, g.cfg.Books),
		Customers:      make([]*models.Customer, 0, g.cfg.Customers),
		MarketingSpend: make([]*models.MarketingSpend, 0, g.cfg.MarketingRows),
	}
	for i := 1; i <= g.cfg.Books; i++ {
		snap.Books = append(snap.Books, g.books.CreateBook(i))
	}
	for i := 1; i <= g.cfg.Customers; i++ {
		c := g.customers.CreateCustomer(i)
		snap.Customers = append(snap.Customers, c)
		profile := pickProfile(g.rng, g.profiles)
		snap.Orders = append(snap.Orders, g.orders.CreateOrders(c, profile, snap.Books)...)
	}
	for i := 0; i < g.cfg.MarketingRows; i++ {
		snap.MarketingSpend = append(snap.MarketingSpend, g.spend.CreateSpend(snap.Customers))
	}
	return snap
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
