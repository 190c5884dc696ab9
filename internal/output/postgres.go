package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
)

var resultTables = map[string]string{
	models.TopicRfmScores: `CREATE TABLE IF NOT EXISTS rfm_scores (
		run_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		name TEXT,
		last_purchase_date TIMESTAMPTZ,
		purchase_frequency INTEGER,
		total_spent NUMERIC(14,2),
		recency_score SMALLINT,
		frequency_score SMALLINT,
		monetary_score SMALLINT,
		rfm_total SMALLINT,
		customer_segment TEXT,
		PRIMARY KEY (run_id, customer_id)
	)`,
	models.TopicSegmentSummary: `CREATE TABLE IF NOT EXISTS segment_summary (
		run_id TEXT NOT NULL,
		segment TEXT NOT NULL,
		customers INTEGER,
		revenue NUMERIC(14,2),
		PRIMARY KEY (run_id, segment)
	)`,
	models.TopicBestSellers: `CREATE TABLE IF NOT EXISTS best_sellers (
		run_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		title TEXT,
		author TEXT,
		genre TEXT,
		units_sold INTEGER,
		revenue NUMERIC(14,2),
		PRIMARY KEY (run_id, book_id)
	)`,
	models.TopicInventory: `CREATE TABLE IF NOT EXISTS inventory_alerts (
		run_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		title TEXT,
		stock_qty INTEGER,
		units_sold INTEGER,
		status TEXT,
		PRIMARY KEY (run_id, book_id)
	)`,
	models.TopicMarketingROI: `CREATE TABLE IF NOT EXISTS marketing_roi (
		run_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		cost NUMERIC(14,2),
		customers_reached INTEGER,
		attributed_revenue NUMERIC(14,2),
		roi_percent NUMERIC(14,2),
		roi_defined BOOLEAN,
		PRIMARY KEY (run_id, channel)
	)`,
	models.TopicGenres: `CREATE TABLE IF NOT EXISTS genre_performance (
		run_id TEXT NOT NULL,
		genre TEXT NOT NULL,
		books_sold INTEGER,
		units_sold INTEGER,
		revenue NUMERIC(14,2),
		revenue_share_percent NUMERIC(6,2),
		PRIMARY KEY (run_id, genre)
	)`,
}

// PostgresOutput buffers records per topic and bulk loads them with COPY on Close, one
// transaction per topic. The table name is the topic name.
type PostgresOutput struct {
	db    *sql.DB
	runID string

	mu      sync.Mutex
	pending map[string][]map[string]interface{}
}

func NewPostgresOutput(ctx context.Context, config models.DatabaseConfig, runID string) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return newPostgresOutput(db, runID), nil
}

func newPostgresOutput(db *sql.DB, runID string) *PostgresOutput {
	return &PostgresOutput{db: db, runID: runID, pending: make(map[string][]map[string]interface{})}
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	if _, ok := resultTables[topic]; !ok {
		return fmt.Errorf("no result table for topic: %s", topic)
	}
	record, err := decodeObject(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pending[topic] = append(p.pending[topic], record)
	p.mu.Unlock()
	return nil
}

// Close flushes every buffered topic and closes the connection pool.
func (p *PostgresOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.flush(context.Background())
	if cerr := p.db.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *PostgresOutput) flush(ctx context.Context) error {
	topics := make([]string, 0, len(p.pending))
	for topic := range p.pending {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		records := p.pending[topic]
		if err := p.copyTopic(ctx, topic, records); err != nil {
			return fmt.Errorf("failed to load %s: %w", topic, err)
		}
		logging.Info("records copied to postgres", zap.String("table", topic), zap.Int("rows", len(records)))
		delete(p.pending, topic)
	}
	return nil
}

func (p *PostgresOutput) copyTopic(ctx context.Context, topic string, records []map[string]interface{}) error {
	if len(records) == 0 {
		return nil
	}
	columns := copyColumns(records[0])

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, resultTables[topic]); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(topic, columns...))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, copyValues(p.runID, columns, record)...); err != nil {
			return fmt.Errorf("failed to exec statement: %w", err)
		}
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close statement: %w", err)
	}
	return tx.Commit()
}

// copyColumns is run_id followed by the record's keys in sorted order.
func copyColumns(record map[string]interface{}) []string {
	return append([]string{"run_id"}, sortedKeys(record)...)
}

func copyValues(runID string, columns []string, record map[string]interface{}) []interface{} {
	values := make([]interface{}, len(columns))
	values[0] = runID
	for i, col := range columns[1:] {
		switch v := record[col].(type) {
		case json.Number:
			values[i+1] = v.String()
		default:
			values[i+1] = v
		}
	}
	return values
}
