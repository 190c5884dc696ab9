package factories

import (
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/models"
)

var genres = []string{
	"Fiction", "Mystery", "Science Fiction", "Fantasy", "Romance", "History",
	"Biography", "Poetry", "Self-Help", "Children", "Cookery", "Travel",
}

type BookFactory struct {
	fake faker.Faker
	rng  *rand.Rand
	id   IDFunc
}

func (bf *BookFactory) CreateBook(seq int) *models.Book {
	cents := int64(bf.rng.Intn(4500) + 499)
	stock := bf.rng.Intn(60)
	// roughly one book in ten is sold out
	if bf.rng.Intn(10) == 0 {
		stock = 0
	}
	return &models.Book{
		ID:       bf.id("b", seq),
		Title:    bf.title(),
		Author:   bf.fake.Person().Name(),
		Genre:    genres[bf.rng.Intn(len(genres))],
		Price:    decimal.New(cents, -2),
		StockQty: stock,
	}
}

// title joins two to four lorem words, each capitalised.
func (bf *BookFactory) title() string {
	words := bf.fake.Lorem().Words(2 + bf.rng.Intn(3))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
