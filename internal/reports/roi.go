package reports

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/models"
	"github.com/chrisdamba/bookrfm/internal/rfm"
)

// validateSpend identifies spend rows by their 1-based position since the table has no key.
func validateSpend(s *models.Snapshot) error {
	customers := s.CustomerIndex()
	var bad, missing []errors.Violation
	for i, m := range s.MarketingSpend {
		id := fmt.Sprintf("row %d", i+1)
		if m.Cost.IsNegative() {
			bad = append(bad, errors.Violation{Table: "marketing_spend", ID: id, Field: "cost", Reason: "must not be negative"})
		}
		if m.Channel == "" {
			bad = append(bad, errors.Violation{Table: "marketing_spend", ID: id, Field: "channel", Reason: "must not be empty"})
		}
		if _, ok := customers[m.CustomerID]; !ok {
			missing = append(missing, errors.Violation{Table: "marketing_spend", ID: id, Field: "customer_id", Ref: m.CustomerID, Reason: "does not exist"})
		}
	}
	return errors.Rows("marketing spend violates column constraints", bad, "marketing spend references missing customers", missing)
}

// MarketingROI reports, per channel, the spend, the distinct customers it reached and the
// lifetime revenue of those customers. ROIPercent is (revenue - cost) / cost * 100 rounded
// to two places; a channel with zero cost has no defined ROI and sorts after the rest.
func MarketingROI(s *models.Snapshot) ([]models.ChannelROI, error) {
	metrics, err := rfm.Aggregate(s, 1)
	if err != nil {
		return nil, err
	}
	if err := validateSpend(s); err != nil {
		return nil, err
	}

	spent := make(map[string]decimal.Decimal, len(metrics))
	for _, m := range metrics {
		spent[m.CustomerID] = m.TotalSpent
	}

	type channel struct {
		cost    decimal.Decimal
		reached map[string]struct{}
	}
	channels := make(map[string]*channel)
	for _, m := range s.MarketingSpend {
		ch, ok := channels[m.Channel]
		if !ok {
			ch = &channel{reached: make(map[string]struct{})}
			channels[m.Channel] = ch
		}
		ch.cost = ch.cost.Add(m.Cost)
		ch.reached[m.CustomerID] = struct{}{}
	}

	out := make([]models.ChannelROI, 0, len(channels))
	for name, ch := range channels {
		row := models.ChannelROI{
			Channel:          name,
			Cost:             ch.cost,
			CustomersReached: len(ch.reached),
		}
		for id := range ch.reached {
			row.AttributedRevenue = row.AttributedRevenue.Add(spent[id])
		}
		if ch.cost.IsPositive() {
			row.ROIDefined = true
			row.ROIPercent = row.AttributedRevenue.Sub(ch.cost).Mul(hundred).Div(ch.cost).Round(2)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ROIDefined != b.ROIDefined {
			return a.ROIDefined
		}
		if c := a.ROIPercent.Cmp(b.ROIPercent); c != 0 {
			return c > 0
		}
		return a.Channel < b.Channel
	})
	return out, nil
}
