package output

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chrisdamba/bookrfm/internal/cloudwriter"
	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/models"
)

// NewRunID identifies one invocation in partition paths, Kafka headers and result tables.
func NewRunID() string {
	return uuid.NewString()
}

// New opens the sink selected by cfg.Output.Destination.
func New(ctx context.Context, cfg *models.Config, runID string) (Destination, error) {
	out := cfg.Output
	switch out.Destination {
	case models.OutputConsole:
		return NewConsoleOutput(nil), nil
	case models.OutputJSON:
		return NewJSONOutput(out.Path, out.Folder, runID), nil
	case models.OutputCSV:
		return NewCSVOutput(out.Path, out.Folder, runID), nil
	case models.OutputParquet:
		if out.Storage == models.StorageLocal {
			return NewParquetOutput(out.Path, out.Folder, runID), nil
		}
		factory, err := newCloudWriterFactory(ctx, cfg.CloudStorage)
		if err != nil {
			return nil, errors.Output("failed to create cloud writer factory", err)
		}
		return NewCloudParquetOutput(factory, cfg.CloudStorage.BucketName, out.Folder, runID), nil
	case models.OutputKafka:
		k, err := NewKafkaOutput(cfg.Kafka, runID)
		if err != nil {
			return nil, errors.Output("failed to open kafka output", err)
		}
		return k, nil
	case models.OutputPostgres:
		p, err := NewPostgresOutput(ctx, cfg.Database, runID)
		if err != nil {
			return nil, errors.Output("failed to open postgres output", err)
		}
		return p, nil
	default:
		return nil, errors.Config(fmt.Sprintf("unsupported output destination: %q", out.Destination))
	}
}

func newCloudWriterFactory(ctx context.Context, cfg models.CloudStorageConfig) (cloudwriter.CloudWriterFactory, error) {
	switch cfg.Provider {
	case models.StorageS3:
		return cloudwriter.NewS3WriterFactory(ctx, cfg.Region, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
	}
}
