package models

import "github.com/shopspring/decimal"

type BestSeller struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Genre     string          `json:"genre"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type InventoryAlert struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	StockQty  int    `json:"stock_qty"`
	UnitsSold int    `json:"units_sold"`
	Status    string `json:"status"`
}

type ChannelROI struct {
	Channel           string          `json:"channel"`
	Cost              decimal.Decimal `json:"cost"`
	CustomersReached  int             `json:"customers_reached"`
	AttributedRevenue decimal.Decimal `json:"attributed_revenue"`
	ROIPercent        decimal.Decimal `json:"roi_percent"`
	ROIDefined        bool            `json:"roi_defined"`
}

type GenrePerformance struct {
	Genre        string          `json:"genre"`
	BooksSold    int             `json:"books_sold"`
	UnitsSold    int             `json:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	RevenueShare decimal.Decimal `json:"revenue_share_percent"`
}

func (b BestSeller) RecordKey() string { return b.BookID }

func (a InventoryAlert) RecordKey() string { return a.BookID }

func (c ChannelROI) RecordKey() string { return c.Channel }

func (g GenrePerformance) RecordKey() string { return g.Genre }
