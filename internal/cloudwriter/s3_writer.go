package cloudwriter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/logging"
)

// putObjectAPI is the part of *s3.Client the writer uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer satisfies io.WriteCloser for the parquet writer, so Close takes no context;
// the upload runs under the context of the factory that created it.
type S3Writer struct {
	ctx        context.Context
	client     putObjectAPI
	bucket     string
	objectPath string
	buffer     bytes.Buffer
	closed     bool
}

// S3WriterFactory hands its context to every writer; cancelling it aborts pending uploads.
type S3WriterFactory struct {
	ctx    context.Context
	client putObjectAPI
}

// NewS3WriterFactory loads the default AWS credential chain. A non-empty endpoint targets an
// S3-compatible service with path-style addressing.
func NewS3WriterFactory(ctx context.Context, region, endpoint string) (*S3WriterFactory, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3WriterFactory{ctx: ctx, client: client}, nil
}

func (f *S3WriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &S3Writer{
		ctx:        f.ctx,
		client:     f.client,
		bucket:     bucket,
		objectPath: objectPath,
	}, nil
}

func (w *S3Writer) Write(data []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed object %s", w.objectPath)
	}
	return w.buffer.Write(data)
}

// Close uploads the buffered bytes. Calling it twice is a no-op.
func (w *S3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(w.objectPath),
		Body:          bytes.NewReader(w.buffer.Bytes()),
		ContentLength: aws.Int64(int64(w.buffer.Len())),
	})
	if err != nil {
		return fmt.Errorf("unable to upload file to S3: %w", err)
	}
	logging.Info("object uploaded",
		zap.String("bucket", w.bucket),
		zap.String("key", w.objectPath),
		zap.Int("bytes", w.buffer.Len()),
	)
	return nil
}
