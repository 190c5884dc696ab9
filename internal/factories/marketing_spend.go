package factories

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type MarketingSpendFactory struct {
	rng   *rand.Rand
	start time.Time
	end   time.Time
}

var channelWeights = map[string]float64{
	models.ChannelEmail:   0.35,
	models.ChannelSocial:  0.25,
	models.ChannelSearch:  0.2,
	models.ChannelDisplay: 0.15,
	models.ChannelEvents:  0.05,
}

func (mf *MarketingSpendFactory) CreateSpend(customers []*models.Customer) *models.MarketingSpend {
	channel := mf.channel()
	cents := int64(mf.rng.Intn(2450) + 50)
	if channel == models.ChannelEmail {
		cents /= 10
	}
	return &models.MarketingSpend{
		CustomerID: customers[mf.rng.Intn(len(customers))].ID,
		Channel:    channel,
		Cost:       decimal.New(cents, -2),
		Date:       mf.start.AddDate(0, 0, mf.rng.Intn(daysBetween(mf.start, mf.end)+1)),
	}
}

func (mf *MarketingSpendFactory) channel() string {
	r := mf.rng.Float64()
	acc := 0.0
	for _, ch := range models.MarketingChannels {
		acc += channelWeights[ch]
		if r < acc {
			return ch
		}
	}
	return models.MarketingChannels[len(models.MarketingChannels)-1]
}
