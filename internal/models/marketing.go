package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketingSpend struct {
	CustomerID string          `json:"customer_id"`
	Channel    string          `json:"channel"`
	Cost       decimal.Decimal `json:"cost"`
	Date       time.Time       `json:"date"`
}
