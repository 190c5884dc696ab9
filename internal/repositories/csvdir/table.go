// Package csvdir stores each bookstore table as a CSV file with a header row inside one directory.
package csvdir

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chrisdamba/bookrfm/internal/models"
)

const (
	BooksFile          = "books.csv"
	CustomersFile      = "customers.csv"
	OrdersFile         = "orders.csv"
	MarketingSpendFile = "marketing_spend.csv"
)

type table struct {
	mu      sync.Mutex
	path    string
	columns []string
}

func newTable(dir, file string, columns ...string) *table {
	return &table{path: filepath.Join(dir, file), columns: columns}
}

// read calls parse for each data row with values keyed by header name. A missing file
// is an empty table.
func (t *table) read(parse func(line int, row map[string]string) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: read header: %w", filepath.Base(t.path), err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	for _, col := range t.columns {
		if !contains(header, col) {
			return fmt.Errorf("%s: missing column %q", filepath.Base(t.path), col)
		}
	}

	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(t.path), line, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = strings.TrimSpace(fields[i])
		}
		if err := parse(line, row); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(t.path), line, err)
		}
	}
}

// appendRows writes rows in column order, adding the header when the file is new.
func (t *table) appendRows(rows [][]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, statErr := os.Stat(t.path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(t.columns); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func (t *table) remove() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseDate accepts a bare date or an RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}
