package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Fetcher reads documents out of a MinIO deployment. Used by on-prem
// installs that cannot reach S3.
type Fetcher struct {
	client      *minio.Client
	notFoundErr error
	logger      logger.Logger
}

func NewFetcher(opts Options, notFoundErr error, log logger.Logger) (*Fetcher, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Fetcher{
		client:      client,
		notFoundErr: notFoundErr,
		logger:      log,
	}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, bucket, path string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio defers the actual request until the first read, so missing
		// objects surface here.
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: minio://%s/%s", f.notFoundErr, bucket, path)
		}
		f.logger.Error("Failed to read document from MinIO",
			logger.String("bucket", bucket),
			logger.String("path", path),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return data, nil
}
