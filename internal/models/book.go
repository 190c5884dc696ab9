package models

import "github.com/shopspring/decimal"

type Book struct {
	ID       string          `json:"book_id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Genre    string          `json:"genre"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
}
