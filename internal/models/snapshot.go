package models

// Snapshot is an immutable read of the four input tables taken once per run.
type Snapshot struct {
	Books          []*Book
	Customers      []*Customer
	Orders         []*Order
	MarketingSpend []*MarketingSpend
}

// BookIndex returns the books keyed by ID.
func (s *Snapshot) BookIndex() map[string]*Book {
	idx := make(map[string]*Book, len(s.Books))
	for _, b := range s.Books {
		idx[b.ID] = b
	}
	return idx
}

// CustomerIndex returns the customers keyed by ID.
func (s *Snapshot) CustomerIndex() map[string]*Customer {
	idx := make(map[string]*Customer, len(s.Customers))
	for _, c := range s.Customers {
		idx[c.ID] = c
	}
	return idx
}
