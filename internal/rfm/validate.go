package rfm

import (
	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/models"
)

// Validate checks the tables the RFM computation reads. Column and key problems are
// reported as a validation error; orders pointing at missing customers or books as an
// integrity error, carried as the validation error's cause when both occur.
func Validate(s *models.Snapshot) error {
	var bad []errors.Violation

	books := make(map[string]struct{}, len(s.Books))
	for _, b := range s.Books {
		if _, dup := books[b.ID]; dup {
			bad = append(bad, errors.Violation{Table: "books", ID: b.ID, Field: "book_id", Reason: "duplicate primary key"})
		}
		books[b.ID] = struct{}{}
		if b.Price.IsNegative() {
			bad = append(bad, errors.Violation{Table: "books", ID: b.ID, Field: "price", Reason: "must not be negative"})
		}
		if b.StockQty < 0 {
			bad = append(bad, errors.Violation{Table: "books", ID: b.ID, Field: "stock_qty", Reason: "must not be negative"})
		}
	}

	customers := make(map[string]struct{}, len(s.Customers))
	for _, c := range s.Customers {
		if _, dup := customers[c.ID]; dup {
			bad = append(bad, errors.Violation{Table: "customers", ID: c.ID, Field: "customer_id", Reason: "duplicate primary key"})
		}
		customers[c.ID] = struct{}{}
	}

	var missing []errors.Violation
	orders := make(map[string]struct{}, len(s.Orders))
	for _, o := range s.Orders {
		if _, dup := orders[o.ID]; dup {
			bad = append(bad, errors.Violation{Table: "orders", ID: o.ID, Field: "order_id", Reason: "duplicate primary key"})
		}
		orders[o.ID] = struct{}{}
		if o.Quantity <= 0 {
			bad = append(bad, errors.Violation{Table: "orders", ID: o.ID, Field: "quantity", Reason: "must be positive"})
		}
		if _, ok := customers[o.CustomerID]; !ok {
			missing = append(missing, errors.Violation{Table: "orders", ID: o.ID, Field: "customer_id", Ref: o.CustomerID, Reason: "does not exist"})
		}
		if _, ok := books[o.BookID]; !ok {
			missing = append(missing, errors.Violation{Table: "orders", ID: o.ID, Field: "book_id", Ref: o.BookID, Reason: "does not exist"})
		}
	}

	return errors.Rows("snapshot violates column constraints", bad, "orders reference missing rows", missing)
}
