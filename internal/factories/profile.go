// Package factories generates synthetic bookstore data for seeding a store.
package factories

import (
	"fmt"
	"math/rand"

	"github.com/lucsky/cuid"
)

// PurchaseProfile shapes how often and how recently a generated customer buys.
type PurchaseProfile struct {
	Name      string
	Ratio     float64
	MinOrders int
	MaxOrders int
	// RecentDays bounds how far before the end date the orders fall. A negative value
	// places them in the first quarter of the date range instead.
	RecentDays int
	MaxQty     int
}

var DefaultProfiles = []PurchaseProfile{
	{Name: "frequent", Ratio: 0.2, MinOrders: 8, MaxOrders: 15, RecentDays: 45, MaxQty: 4},
	{Name: "regular", Ratio: 0.3, MinOrders: 4, MaxOrders: 8, RecentDays: 120, MaxQty: 3},
	{Name: "occasional", Ratio: 0.3, MinOrders: 1, MaxOrders: 3, RecentDays: 240, MaxQty: 2},
	{Name: "dormant", Ratio: 0.2, MinOrders: 0, MaxOrders: 2, RecentDays: -1, MaxQty: 1},
}

func pickProfile(rng *rand.Rand, profiles []PurchaseProfile) PurchaseProfile {
	r := rng.Float64()
	acc := 0.0
	for _, p := range profiles {
		acc += p.Ratio
		if r < acc {
			return p
		}
	}
	return profiles[len(profiles)-1]
}

// IDFunc returns the identifier of the seq-th row of a table.
type IDFunc func(prefix string, seq int) string

const (
	IDStyleSequential = "sequential"
	IDStyleCUID       = "cuid"
)

// SequentialIDs keeps generated datasets reproducible for a seed.
func SequentialIDs(prefix string, seq int) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// CUIDs produces collision-resistant IDs for datasets appended to an existing store.
func CUIDs(prefix string, _ int) string {
	return prefix + "-" + cuid.New()
}

func IDFuncFor(style string) (IDFunc, error) {
	switch style {
	case "", IDStyleSequential:
		return SequentialIDs, nil
	case IDStyleCUID:
		return CUIDs, nil
	default:
		return nil, fmt.Errorf("unsupported id style: %q", style)
	}
}
