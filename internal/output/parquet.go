package output

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/cloudwriter"
	"github.com/chrisdamba/bookrfm/internal/logging"
)

type parquetFile struct {
	mu     sync.Mutex
	writer *writer.ParquetWriter
	file   source.ParquetFile
	rows   rowType
}

// ParquetOutput writes one Parquet file per topic, locally or to a bucket when a cloud
// writer factory is set.
type ParquetOutput struct {
	basePath string
	folder   string
	runID    string

	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string

	mu    sync.Mutex
	files map[string]*parquetFile
}

func NewParquetOutput(basePath, folder, runID string) *ParquetOutput {
	return &ParquetOutput{
		basePath: basePath,
		folder:   folder,
		runID:    runID,
		files:    make(map[string]*parquetFile),
	}
}

// NewCloudParquetOutput uploads to bucket under <folder>/<topic>/run=<id>/data.parquet.
func NewCloudParquetOutput(factory cloudwriter.CloudWriterFactory, bucket, folder, runID string) *ParquetOutput {
	p := NewParquetOutput("", folder, runID)
	p.cloudWriterFactory = factory
	p.cloudBucketName = bucket
	return p
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	pf, err := p.fileFor(topic)
	if err != nil {
		return err
	}

	row, err := pf.rows.decode(msg)
	if err != nil {
		return fmt.Errorf("failed to decode %s record: %w", topic, err)
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()
	if err := pf.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (p *ParquetOutput) fileFor(topic string) (*parquetFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pf, ok := p.files[topic]; ok {
		return pf, nil
	}
	rows, err := parquetRowType(topic)
	if err != nil {
		return nil, err
	}

	fw, err := p.createFile(topic)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewParquetWriter(fw, rows.schema, 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	pf := &parquetFile{writer: pw, file: fw, rows: rows}
	p.files[topic] = pf
	return pf, nil
}

func (p *ParquetOutput) createFile(topic string) (source.ParquetFile, error) {
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.folder, topic, "run="+p.runID, "data.parquet")
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cloudWriter), nil
	}

	dir := partitionDir(p.basePath, p.folder, topic, p.runID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filepath.Join(dir, "data.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}

// Close finalises every file in topic order and returns the first error.
func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	topics := make([]string, 0, len(p.files))
	for topic := range p.files {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	var firstErr error
	for _, topic := range topics {
		pf := p.files[topic]
		pf.mu.Lock()
		if err := pf.writer.WriteStop(); err != nil {
			logging.Error("failed to finalise parquet writer", zap.String("topic", topic), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := pf.file.Close(); err != nil {
			logging.Error("failed to close parquet file", zap.String("topic", topic), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		pf.mu.Unlock()
		delete(p.files, topic)
	}
	return firstErr
}

// CloudParquetFile adapts a CloudWriter to the write-only subset of source.ParquetFile
// the Parquet writer needs.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the receiver; the object is created when the writer closes.
func (c *CloudParquetFile) Open(string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
