package output

import (
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/bookrfm/internal/models"
)

// Parquet rows mirror the JSON encoding of the result records. Decimals and dates arrive
// as JSON strings and are stored as UTF8.

type rfmScoreRow struct {
	CustomerID        string `json:"customer_id" parquet:"name=customer_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Name              string `json:"name" parquet:"name=name,type=BYTE_ARRAY,convertedtype=UTF8"`
	LastPurchaseDate  string `json:"last_purchase_date" parquet:"name=last_purchase_date,type=BYTE_ARRAY,convertedtype=UTF8"`
	PurchaseFrequency int64  `json:"purchase_frequency" parquet:"name=purchase_frequency,type=INT64"`
	TotalSpent        string `json:"total_spent" parquet:"name=total_spent,type=BYTE_ARRAY,convertedtype=UTF8"`
	RecencyScore      int32  `json:"recency_score" parquet:"name=recency_score,type=INT32"`
	FrequencyScore    int32  `json:"frequency_score" parquet:"name=frequency_score,type=INT32"`
	MonetaryScore     int32  `json:"monetary_score" parquet:"name=monetary_score,type=INT32"`
	RfmTotal          int32  `json:"rfm_total" parquet:"name=rfm_total,type=INT32"`
	Segment           string `json:"customer_segment" parquet:"name=customer_segment,type=BYTE_ARRAY,convertedtype=UTF8"`
}

type segmentSummaryRow struct {
	Segment   string `json:"segment" parquet:"name=segment,type=BYTE_ARRAY,convertedtype=UTF8"`
	Customers int64  `json:"customers" parquet:"name=customers,type=INT64"`
	Revenue   string `json:"revenue" parquet:"name=revenue,type=BYTE_ARRAY,convertedtype=UTF8"`
}

type bestSellerRow struct {
	BookID    string `json:"book_id" parquet:"name=book_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Title     string `json:"title" parquet:"name=title,type=BYTE_ARRAY,convertedtype=UTF8"`
	Author    string `json:"author" parquet:"name=author,type=BYTE_ARRAY,convertedtype=UTF8"`
	Genre     string `json:"genre" parquet:"name=genre,type=BYTE_ARRAY,convertedtype=UTF8"`
	UnitsSold int64  `json:"units_sold" parquet:"name=units_sold,type=INT64"`
	Revenue   string `json:"revenue" parquet:"name=revenue,type=BYTE_ARRAY,convertedtype=UTF8"`
}

type inventoryAlertRow struct {
	BookID    string `json:"book_id" parquet:"name=book_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Title     string `json:"title" parquet:"name=title,type=BYTE_ARRAY,convertedtype=UTF8"`
	StockQty  int64  `json:"stock_qty" parquet:"name=stock_qty,type=INT64"`
	UnitsSold int64  `json:"units_sold" parquet:"name=units_sold,type=INT64"`
	Status    string `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

type channelROIRow struct {
	Channel           string `json:"channel" parquet:"name=channel,type=BYTE_ARRAY,convertedtype=UTF8"`
	Cost              string `json:"cost" parquet:"name=cost,type=BYTE_ARRAY,convertedtype=UTF8"`
	CustomersReached  int64  `json:"customers_reached" parquet:"name=customers_reached,type=INT64"`
	AttributedRevenue string `json:"attributed_revenue" parquet:"name=attributed_revenue,type=BYTE_ARRAY,convertedtype=UTF8"`
	ROIPercent        string `json:"roi_percent" parquet:"name=roi_percent,type=BYTE_ARRAY,convertedtype=UTF8"`
	ROIDefined        bool   `json:"roi_defined" parquet:"name=roi_defined,type=BOOLEAN"`
}

type genrePerformanceRow struct {
	Genre        string `json:"genre" parquet:"name=genre,type=BYTE_ARRAY,convertedtype=UTF8"`
	BooksSold    int64  `json:"books_sold" parquet:"name=books_sold,type=INT64"`
	UnitsSold    int64  `json:"units_sold" parquet:"name=units_sold,type=INT64"`
	Revenue      string `json:"revenue" parquet:"name=revenue,type=BYTE_ARRAY,convertedtype=UTF8"`
	RevenueShare string `json:"revenue_share_percent" parquet:"name=revenue_share_percent,type=BYTE_ARRAY,convertedtype=UTF8"`
}

type rowType struct {
	schema interface{}
	decode func(msg []byte) (interface{}, error)
}

func rowOf[T any]() rowType {
	return rowType{
		schema: new(T),
		decode: func(msg []byte) (interface{}, error) {
			var row T
			err := json.Unmarshal(msg, &row)
			return row, err
		},
	}
}

var parquetRows = map[string]rowType{
	models.TopicRfmScores:      rowOf[rfmScoreRow](),
	models.TopicSegmentSummary: rowOf[segmentSummaryRow](),
	models.TopicBestSellers:    rowOf[bestSellerRow](),
	models.TopicInventory:      rowOf[inventoryAlertRow](),
	models.TopicMarketingROI:   rowOf[channelROIRow](),
	models.TopicGenres:         rowOf[genrePerformanceRow](),
}

func parquetRowType(topic string) (rowType, error) {
	rt, ok := parquetRows[topic]
	if !ok {
		return rowType{}, fmt.Errorf("no parquet schema for topic: %s", topic)
	}
	return rt, nil
}
