package factories

import (
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type CustomerFactory struct {
	fake  faker.Faker
	rng   *rand.Rand
	id    IDFunc
	start time.Time
}

// CreateCustomer signs the customer up during the year before the start date.
func (cf *CustomerFactory) CreateCustomer(seq int) *models.Customer {
	return &models.Customer{
		ID:         cf.id("c", seq),
		Name:       cf.fake.Person().Name(),
		Email:      cf.fake.Internet().Email(),
		City:       cf.fake.Address().City(),
		SignupDate: cf.start.AddDate(0, 0, -cf.rng.Intn(365)),
	}
}
