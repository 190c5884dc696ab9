package csvdir

import (
	"os"

	"github.com/chrisdamba/bookrfm/internal/repositories"
)

// Open returns a store over dir. When create is set the directory is made if missing.
func Open(dir string, create bool) (*repositories.Store, error) {
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := CheckDir(dir); err != nil {
		return nil, err
	}
	return repositories.NewStore(
		NewBookRepository(dir),
		NewCustomerRepository(dir),
		NewOrderRepository(dir),
		NewMarketingSpendRepository(dir),
		nil,
	), nil
}
