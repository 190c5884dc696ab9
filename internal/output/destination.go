// Package output writes result records to files, Kafka topics, Postgres tables or stdout.
// Every sink receives JSON-encoded records through the Destination interface.
package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/logging"
)

type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// KeyedDestination is implemented by sinks that partition records by key.
type KeyedDestination interface {
	Destination
	WriteKeyedMessage(topic, key string, msg []byte) error
}

// Keyed records expose the identifier used as message key.
type Keyed interface {
	RecordKey() string
}

// Publish JSON-encodes each record and writes it to topic. Records implementing Keyed are
// sent with their key when dest supports it.
func Publish[T any](dest Destination, topic string, records []T) error {
	keyed, canKey := dest.(KeyedDestination)
	for i, rec := range records {
		msg, err := json.Marshal(rec)
		if err != nil {
			return errors.Output(fmt.Sprintf("encode %s record %d", topic, i), err)
		}
		if k, ok := any(rec).(Keyed); ok && canKey {
			err = keyed.WriteKeyedMessage(topic, k.RecordKey(), msg)
		} else {
			err = dest.WriteMessage(topic, msg)
		}
		if err != nil {
			return errors.Output("write to "+topic, err).WithContext("record", i)
		}
	}
	logging.Info("records published", zap.String("topic", topic), zap.Int("records", len(records)))
	return nil
}

// partitionDir is where file sinks put the records of one topic for one run.
func partitionDir(basePath, folder, topic, runID string) string {
	return filepath.Join(basePath, folder, topic, "run="+runID)
}
