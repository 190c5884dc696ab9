package rfm

import (
	"sort"

	"github.com/chrisdamba/bookrfm/internal/models"
)

const quintiles = 5

// ntile returns the group (1-based) of each position 0..n-1 when n sorted rows are cut
// into buckets contiguous groups. The first n%buckets groups hold one extra row. With
// fewer rows than buckets every row is its own group, so only ranks 1..n appear.
func ntile(n, buckets int) []int {
	groups := make([]int, 0, n)
	base, rem := n/buckets, n%buckets
	for g := 1; g <= buckets; g++ {
		size := base
		if g <= rem {
			size++
		}
		for i := 0; i < size; i++ {
			groups = append(groups, g)
		}
	}
	return groups
}

// rankBy orders rows with before (ties broken by customer ID ascending) and returns the
// quintile of every row, indexed like rows.
func rankBy(rows []models.CustomerMetrics, before func(a, b *models.CustomerMetrics) int) []int {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := &rows[order[i]], &rows[order[j]]
		if c := before(a, b); c != 0 {
			return c < 0
		}
		return a.CustomerID < b.CustomerID
	})

	tiles := ntile(len(rows), quintiles)
	ranks := make([]int, len(rows))
	for pos, idx := range order {
		ranks[idx] = tiles[pos]
	}
	return ranks
}

func byRecency(a, b *models.CustomerMetrics) int {
	switch {
	case a.LastPurchaseDate.After(b.LastPurchaseDate):
		return -1
	case a.LastPurchaseDate.Before(b.LastPurchaseDate):
		return 1
	}
	return 0
}

func byFrequency(a, b *models.CustomerMetrics) int {
	return b.PurchaseFrequency - a.PurchaseFrequency
}

func byMonetary(a, b *models.CustomerMetrics) int {
	return b.TotalSpent.Cmp(a.TotalSpent)
}

// Rank assigns the three independent quintile ranks. The returned scores carry the
// metrics and ranks in the same order as rows; totals and segments are not yet set.
func Rank(rows []models.CustomerMetrics) []models.RfmScore {
	recency := rankBy(rows, byRecency)
	frequency := rankBy(rows, byFrequency)
	monetary := rankBy(rows, byMonetary)

	out := make([]models.RfmScore, len(rows))
	for i, m := range rows {
		out[i] = models.RfmScore{
			CustomerMetrics: m,
			RecencyScore:    recency[i],
			FrequencyScore:  frequency[i],
			MonetaryScore:   monetary[i],
		}
	}
	return out
}
