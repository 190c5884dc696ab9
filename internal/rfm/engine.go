// Package rfm scores customers by recency, frequency and monetary value.
//
// The computation runs in three stages over an immutable snapshot: Aggregate builds
// per-customer metrics, Rank cuts the population into quintiles on each dimension,
// and Classify maps the summed ranks to a segment.
package rfm

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
)

// Options tunes an Engine. Zero values fall back to one worker and ntile orientation.
type Options struct {
	Workers     int
	Orientation models.ScoreOrientation
}

// OptionsFromConfig reads the rfm section of cfg.
func OptionsFromConfig(cfg *models.Config) Options {
	return Options{Workers: cfg.RFM.Workers, Orientation: cfg.RFM.Orientation}
}

// Engine scores snapshots. It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine with defaults applied to opts.
func NewEngine(opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Orientation == "" {
		opts.Orientation = models.OrientationNTile
	}
	return &Engine{opts: opts}
}

// Compute returns one score per customer with at least one order, ordered by rfm_total
// descending and customer ID ascending. An empty snapshot yields an empty slice.
func (e *Engine) Compute(s *models.Snapshot) ([]models.RfmScore, error) {
	start := time.Now()

	metrics, err := Aggregate(s, e.opts.Workers)
	if err != nil {
		return nil, err
	}
	logging.Debug("aggregated customer metrics",
		zap.Int("orders", len(s.Orders)),
		zap.Int("customers", len(s.Customers)),
		zap.Int("active_customers", len(metrics)),
	)

	scores := Rank(metrics)
	for i := range scores {
		sc := &scores[i]
		if e.opts.Orientation == models.OrientationScore {
			sc.RecencyScore = quintiles + 1 - sc.RecencyScore
			sc.FrequencyScore = quintiles + 1 - sc.FrequencyScore
			sc.MonetaryScore = quintiles + 1 - sc.MonetaryScore
		}
		sc.RfmTotal = sc.RecencyScore + sc.FrequencyScore + sc.MonetaryScore
		sc.Segment = Classify(sc.RfmTotal)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].RfmTotal != scores[j].RfmTotal {
			return scores[i].RfmTotal > scores[j].RfmTotal
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})

	logging.Info("rfm scores computed",
		zap.Int("customers", len(scores)),
		zap.String("orientation", string(e.opts.Orientation)),
		zap.Int("workers", e.opts.Workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return scores, nil
}

// Summarize counts customers and revenue per segment, in models.Segments order.
// Segments without customers are reported with zero counts.
func Summarize(scores []models.RfmScore) []models.SegmentSummary {
	bySegment := make(map[models.Segment]*models.SegmentSummary, len(models.Segments))
	out := make([]models.SegmentSummary, len(models.Segments))
	for i, seg := range models.Segments {
		out[i] = models.SegmentSummary{Segment: seg, Revenue: decimal.Zero}
		bySegment[seg] = &out[i]
	}
	for _, sc := range scores {
		sum := bySegment[sc.Segment]
		sum.Customers++
		sum.Revenue = sum.Revenue.Add(sc.TotalSpent)
	}
	return out
}
