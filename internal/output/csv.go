package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

type csvFile struct {
	file    *os.File
	writer  *csv.Writer
	headers []string
}

// CSVOutput writes one CSV file per topic. The header is the sorted key set of the
// topic's first record; later records are projected onto it.
type CSVOutput struct {
	basePath string
	folder   string
	runID    string

	mu    sync.Mutex
	files map[string]*csvFile
}

func NewCSVOutput(basePath, folder, runID string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		runID:    runID,
		files:    make(map[string]*csvFile),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	record, err := decodeObject(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.files[topic]
	if !ok {
		dir := partitionDir(c.basePath, c.folder, topic, c.runID)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(dir, "data.csv"))
		if err != nil {
			return err
		}
		f = &csvFile{file: file, writer: csv.NewWriter(file), headers: sortedKeys(record)}
		c.files[topic] = f
		if err := f.writer.Write(f.headers); err != nil {
			return err
		}
	}

	row := make([]string, len(f.headers))
	for i, header := range f.headers {
		if value, ok := record[header]; ok && value != nil {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := f.writer.Write(row); err != nil {
		return err
	}
	f.writer.Flush()
	return f.writer.Error()
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for topic, f := range c.files {
		f.writer.Flush()
		if err := f.writer.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := f.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.files, topic)
	}
	return firstErr
}

// decodeObject keeps numbers as json.Number so integers and decimals print exactly.
func decodeObject(msg []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var record map[string]interface{}
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("message is not a json object")
	}
	return record, nil
}

func sortedKeys(record map[string]interface{}) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
