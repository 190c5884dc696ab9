package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Segment string

const (
	SegmentChampions Segment = "Champions"
	SegmentLoyal     Segment = "Loyal"
	SegmentPotential Segment = "Potential"
	SegmentAtRisk    Segment = "At Risk"
)

// Segments lists every segment from the highest rfm_total band to the lowest.
var Segments = []Segment{SegmentChampions, SegmentLoyal, SegmentPotential, SegmentAtRisk}

type CustomerMetrics struct {
	CustomerID        string          `json:"customer_id"`
	Name              string          `json:"name"`
	LastPurchaseDate  time.Time       `json:"last_purchase_date"`
	PurchaseFrequency int             `json:"purchase_frequency"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
}

type RfmScore struct {
	CustomerMetrics
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	RfmTotal       int     `json:"rfm_total"`
	Segment        Segment `json:"customer_segment"`
}

// SegmentSummary counts customers per segment for a finished run.
type SegmentSummary struct {
	Segment   Segment         `json:"segment"`
	Customers int             `json:"customers"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func (s RfmScore) RecordKey() string { return s.CustomerID }

func (s SegmentSummary) RecordKey() string { return string(s.Segment) }
