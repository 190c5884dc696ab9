package rfm

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return epoch.AddDate(0, 0, n) }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type builder struct {
	snap models.Snapshot
	seq  int
}

func (b *builder) book(id, price string) *builder {
	b.snap.Books = append(b.snap.Books, &models.Book{ID: id, Title: "Title " + id, Genre: "Fiction", Price: money(price), StockQty: 10})
	return b
}

func (b *builder) customer(id string) *builder {
	b.snap.Customers = append(b.snap.Customers, &models.Customer{ID: id, Name: "Customer " + id, SignupDate: epoch})
	return b
}

func (b *builder) order(customerID, bookID string, qty, onDay int) *builder {
	b.seq++
	b.snap.Orders = append(b.snap.Orders, &models.Order{
		ID:         fmt.Sprintf("o%04d", b.seq),
		CustomerID: customerID,
		BookID:     bookID,
		Quantity:   qty,
		OrderDate:  day(onDay),
	})
	return b
}

func randomSnapshot(seed int64, customers, books, orders int) *models.Snapshot {
	rng := rand.New(rand.NewSource(seed))
	b := &builder{}
	for i := 0; i < books; i++ {
		b.book(fmt.Sprintf("b%03d", i), fmt.Sprintf("%d.%02d", rng.Intn(40)+1, rng.Intn(100)))
	}
	for i := 0; i < customers; i++ {
		b.customer(fmt.Sprintf("c%03d", i))
	}
	// the last five customers never order
	for i := 0; i < orders; i++ {
		b.order(fmt.Sprintf("c%03d", rng.Intn(customers-5)), fmt.Sprintf("b%03d", rng.Intn(books)), rng.Intn(4)+1, rng.Intn(365))
	}
	return &b.snap
}

func TestNtileGroupSizes(t *testing.T) {
	for n := 0; n <= 13; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			groups := ntile(n, quintiles)
			if len(groups) != n {
				t.Fatalf("got %d positions, want %d", len(groups), n)
			}

			sizes := map[int]int{}
			for i, g := range groups {
				if i > 0 && g < groups[i-1] {
					t.Fatalf("groups not contiguous: %v", groups)
				}
				sizes[g]++
			}

			if n < quintiles {
				for g := 1; g <= n; g++ {
					if sizes[g] != 1 {
						t.Fatalf("n=%d: group %d has %d rows, want 1", n, g, sizes[g])
					}
				}
				if len(sizes) != n {
					t.Fatalf("n=%d: expected ranks compressed to 1..%d, got %v", n, n, sizes)
				}
				return
			}

			for g := 1; g <= quintiles; g++ {
				want := n / quintiles
				if g <= n%quintiles {
					want++
				}
				if sizes[g] != want {
					t.Fatalf("n=%d: group %d has %d rows, want %d", n, g, sizes[g], want)
				}
			}
			if sizes[1] < n/quintiles {
				t.Fatalf("rank-1 group smaller than floor(n/5)")
			}
		})
	}
}

func TestAggregateMatchesBruteForce(t *testing.T) {
	snap := randomSnapshot(7, 40, 25, 400)

	type expected struct {
		last   time.Time
		orders map[string]bool
		spent  decimal.Decimal
	}
	prices := snap.BookIndex()
	brute := map[string]*expected{}
	for _, o := range snap.Orders {
		e, ok := brute[o.CustomerID]
		if !ok {
			e = &expected{orders: map[string]bool{}}
			brute[o.CustomerID] = e
		}
		if o.OrderDate.After(e.last) {
			e.last = o.OrderDate
		}
		e.orders[o.ID] = true
		e.spent = e.spent.Add(prices[o.BookID].Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
	}

	for _, workers := range []int{1, 3, 8, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := Aggregate(snap, workers)
			if err != nil {
				t.Fatalf("aggregate: %v", err)
			}
			if len(got) != len(brute) {
				t.Fatalf("got %d customers, want %d", len(got), len(brute))
			}
			for _, m := range got {
				e := brute[m.CustomerID]
				if e == nil {
					t.Fatalf("unexpected customer %s", m.CustomerID)
				}
				if !m.LastPurchaseDate.Equal(e.last) || m.PurchaseFrequency != len(e.orders) || !m.TotalSpent.Equal(e.spent) {
					t.Fatalf("customer %s: got %+v, want last=%v freq=%d spent=%s", m.CustomerID, m, e.last, len(e.orders), e.spent)
				}
			}
		})
	}
}

func TestAggregateExcludesCustomersWithoutOrders(t *testing.T) {
	b := (&builder{}).book("b1", "10.00").customer("c1").customer("c2").order("c1", "b1", 2, 3)

	got, err := Aggregate(&b.snap, 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []models.CustomerMetrics{{
		CustomerID:        "c1",
		Name:              "Customer c1",
		LastPurchaseDate:  day(3),
		PurchaseFrequency: 1,
		TotalSpent:        money("20.00"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateMissingReferences(t *testing.T) {
	b := (&builder{}).book("b1", "10").customer("c1").
		order("c1", "b1", 1, 1).
		order("c1", "b404", 1, 2).
		order("c404", "b1", 1, 3)

	_, err := Aggregate(&b.snap, 2)
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	e := err.(*errors.Error)
	if diff := cmp.Diff([]string{"o0002", "o0003"}, e.IDs()); diff != "" {
		t.Fatalf("offending orders mismatch (-want +got):\n%s", diff)
	}
	if e.Violations[0].Field != "book_id" || e.Violations[0].Ref != "b404" {
		t.Fatalf("unexpected first violation: %+v", e.Violations[0])
	}
}

func TestValidateReportsColumnAndReferenceViolations(t *testing.T) {
	b := (&builder{}).book("b1", "10").customer("c1").
		order("c1", "b1", 1, 1).
		order("c1", "b404", 1, 2)
	b.snap.Books[0].StockQty = -1

	err := Validate(&b.snap)
	if !errors.IsType(err, errors.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("missing reference dropped from %v", err)
	}
	cause, ok := err.(*errors.Error).Cause.(*errors.Error)
	if !ok {
		t.Fatalf("expected integrity cause, got %v", err)
	}
	if diff := cmp.Diff([]string{"o0002"}, cause.IDs()); diff != "" {
		t.Fatalf("offending orders mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsBadColumns(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *builder)
		field string
	}{
		{
			name:  "zero quantity",
			build: func(b *builder) { b.order("c1", "b1", 0, 1) },
			field: "quantity",
		},
		{
			name:  "negative price",
			build: func(b *builder) { b.book("b2", "-1.00") },
			field: "price",
		},
		{
			name:  "duplicate customer",
			build: func(b *builder) { b.customer("c1") },
			field: "customer_id",
		},
		{
			name: "duplicate order",
			build: func(b *builder) {
				b.order("c1", "b1", 1, 1)
				b.snap.Orders = append(b.snap.Orders, b.snap.Orders[0])
			},
			field: "order_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := (&builder{}).book("b1", "5").customer("c1")
			tt.build(b)

			err := Validate(&b.snap)
			if !errors.IsType(err, errors.TypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := err.(*errors.Error).Violations[0].Field; got != tt.field {
				t.Fatalf("got field %q, want %q", got, tt.field)
			}
		})
	}
}

func TestRankTieBreaksOnCustomerID(t *testing.T) {
	b := (&builder{}).book("b1", "10")
	for _, id := range []string{"c6", "c2", "c5", "c1", "c4", "c3"} {
		b.customer(id).order(id, "b1", 1, 10)
	}

	metrics, err := Aggregate(&b.snap, 1)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	got := map[string]int{}
	for _, sc := range Rank(metrics) {
		if sc.RecencyScore != sc.FrequencyScore || sc.FrequencyScore != sc.MonetaryScore {
			t.Fatalf("identical metrics ranked differently: %+v", sc)
		}
		got[sc.CustomerID] = sc.RecencyScore
	}
	want := map[string]int{"c1": 1, "c2": 1, "c3": 2, "c4": 3, "c5": 4, "c6": 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeRecencyTopQuintileIsMostRecent(t *testing.T) {
	b := (&builder{}).book("b1", "10")
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("c%02d", i)
		b.customer(id).order(id, "b1", 1, i)
	}

	scores, err := NewEngine(Options{}).Compute(&b.snap)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var top []string
	for _, sc := range scores {
		if sc.RecencyScore == 1 {
			top = append(top, sc.CustomerID)
		}
	}
	want := []string{"c20", "c21", "c22", "c23", "c24"}
	if diff := cmp.Diff(want, sortedCopy(top)); diff != "" {
		t.Fatalf("rank-1 recency group mismatch (-want +got):\n%s", diff)
	}
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// strong buys often, recently and big; weak bought once, long ago and small.
func strongAndWeak() *models.Snapshot {
	b := (&builder{}).book("big", "100.00").book("mid", "30.00").book("small", "50.00")
	b.customer("strong").customer("weak")
	for i := 0; i < 5; i++ {
		b.order("strong", "big", 1, 300+i)
	}
	b.order("weak", "small", 1, 1)
	for i, id := range []string{"f1", "f2", "f3"} {
		b.customer(id).order(id, "mid", 2, 100+i).order(id, "mid", 1+i, 150+i)
	}
	return &b.snap
}

func findScore(t *testing.T, scores []models.RfmScore, id string) (int, models.RfmScore) {
	t.Helper()
	for i, sc := range scores {
		if sc.CustomerID == id {
			return i, sc
		}
	}
	t.Fatalf("customer %s missing from scores", id)
	return -1, models.RfmScore{}
}

func TestComputeStrongCustomerRanksBetter(t *testing.T) {
	scores, err := NewEngine(Options{Workers: 2}).Compute(strongAndWeak())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	strongPos, strong := findScore(t, scores, "strong")
	weakPos, weak := findScore(t, scores, "weak")

	if strong.RecencyScore != 1 || strong.FrequencyScore != 1 || strong.MonetaryScore != 1 {
		t.Fatalf("strong customer should hold rank 1 everywhere: %+v", strong)
	}
	if weak.RecencyScore != 5 || weak.FrequencyScore != 5 || weak.MonetaryScore != 5 {
		t.Fatalf("weak customer should hold rank 5 everywhere: %+v", weak)
	}
	if strong.RfmTotal != 3 || strong.Segment != models.SegmentAtRisk {
		t.Fatalf("unexpected strong total/segment: %d %s", strong.RfmTotal, strong.Segment)
	}
	if weak.RfmTotal != 15 || weak.Segment != models.SegmentChampions {
		t.Fatalf("unexpected weak total/segment: %d %s", weak.RfmTotal, weak.Segment)
	}
	// descending rfm_total puts the higher total first
	if weakPos > strongPos {
		t.Fatalf("expected weak (total 15) before strong (total 3), got positions %d and %d", weakPos, strongPos)
	}
}

func TestComputeScoreOrientationInvertsRanks(t *testing.T) {
	scores, err := NewEngine(Options{Orientation: models.OrientationScore}).Compute(strongAndWeak())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if scores[0].CustomerID != "strong" || scores[0].RfmTotal != 15 || scores[0].Segment != models.SegmentChampions {
		t.Fatalf("expected strong customer first as champion, got %+v", scores[0])
	}
	last := scores[len(scores)-1]
	if last.CustomerID != "weak" || last.RfmTotal != 3 || last.Segment != models.SegmentAtRisk {
		t.Fatalf("expected weak customer last at risk, got %+v", last)
	}
}

func TestComputeSmallPopulation(t *testing.T) {
	b := (&builder{}).book("b1", "10")
	for i, id := range []string{"c1", "c2", "c3"} {
		b.customer(id).order(id, "b1", i+1, i)
	}

	scores, err := NewEngine(Options{}).Compute(&b.snap)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	for _, sc := range scores {
		for _, r := range []int{sc.RecencyScore, sc.FrequencyScore, sc.MonetaryScore} {
			if r < 1 || r > 3 {
				t.Fatalf("rank %d outside compressed range 1..3: %+v", r, sc)
			}
		}
		if sc.RfmTotal < 3 || sc.RfmTotal > 15 {
			t.Fatalf("total out of range: %+v", sc)
		}
	}
}

func TestComputeEmptySnapshot(t *testing.T) {
	b := (&builder{}).book("b1", "10").customer("c1")

	scores, err := NewEngine(Options{}).Compute(&b.snap)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if scores == nil || len(scores) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", scores)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	snap := randomSnapshot(11, 60, 20, 500)

	first, err := NewEngine(Options{Workers: 1}).Compute(snap)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := NewEngine(Options{Workers: 6}).Compute(snap)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatal("repeated runs produced different output")
	}

	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.RfmTotal < cur.RfmTotal || (prev.RfmTotal == cur.RfmTotal && prev.CustomerID > cur.CustomerID) {
			t.Fatalf("output not ordered at %d: %+v then %+v", i, prev, cur)
		}
		if cur.Segment != Classify(cur.RfmTotal) {
			t.Fatalf("segment does not match total: %+v", cur)
		}
	}
}

func TestClassify(t *testing.T) {
	want := map[int]models.Segment{
		3: models.SegmentAtRisk, 4: models.SegmentAtRisk, 5: models.SegmentAtRisk,
		6: models.SegmentPotential, 7: models.SegmentPotential, 8: models.SegmentPotential,
		9: models.SegmentLoyal, 10: models.SegmentLoyal, 11: models.SegmentLoyal,
		12: models.SegmentChampions, 13: models.SegmentChampions, 14: models.SegmentChampions, 15: models.SegmentChampions,
	}
	for total, seg := range want {
		if got := Classify(total); got != seg {
			t.Errorf("Classify(%d) = %s, want %s", total, got, seg)
		}
	}
}

func TestSummarize(t *testing.T) {
	scores := []models.RfmScore{
		{CustomerMetrics: models.CustomerMetrics{CustomerID: "a", TotalSpent: money("10")}, Segment: models.SegmentLoyal},
		{CustomerMetrics: models.CustomerMetrics{CustomerID: "b", TotalSpent: money("5.5")}, Segment: models.SegmentLoyal},
		{CustomerMetrics: models.CustomerMetrics{CustomerID: "c", TotalSpent: money("1")}, Segment: models.SegmentAtRisk},
	}

	want := []models.SegmentSummary{
		{Segment: models.SegmentChampions, Revenue: decimal.Zero},
		{Segment: models.SegmentLoyal, Customers: 2, Revenue: money("15.5")},
		{Segment: models.SegmentPotential, Revenue: decimal.Zero},
		{Segment: models.SegmentAtRisk, Customers: 1, Revenue: money("1")},
	}
	if diff := cmp.Diff(want, Summarize(scores)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
