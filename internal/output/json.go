package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONOutput appends one JSON document per line to <path>/<folder>/<topic>/run=<id>/data.json.
type JSONOutput struct {
	basePath string
	folder   string
	runID    string

	mu    sync.Mutex
	files map[string]*os.File
}

func NewJSONOutput(basePath, folder, runID string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		runID:    runID,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	if !json.Valid(msg) {
		return fmt.Errorf("invalid json message for topic %s", topic)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, ok := j.files[topic]
	if !ok {
		dir := partitionDir(j.basePath, j.folder, topic, j.runID)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
		var err error
		file, err = os.Create(filepath.Join(dir, "data.json"))
		if err != nil {
			return err
		}
		j.files[topic] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var firstErr error
	for topic, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(j.files, topic)
	}
	return firstErr
}
