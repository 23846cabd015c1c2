package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
	"github.com/hazemkhaled/text-extractor/pkg/storage/minio"
	"github.com/hazemkhaled/text-extractor/pkg/storage/s3"
)

// BackendType selects the object-store backend.
type BackendType string

const (
	BackendS3    BackendType = "s3"
	BackendMinio BackendType = "minio"
)

// ErrNotFound reports that the locator points at nothing. The job layer
// treats it (like every other fetch failure) as fatal for the job.
var ErrNotFound = errors.New("document not found")

// Fetcher retrieves raw document bytes by locator.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, path string) ([]byte, error)
}

// Options carries the credentials for whichever backend is selected.
type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewFetcher is the backend factory.
func NewFetcher(backend BackendType, opts Options, log logger.Logger) (Fetcher, error) {
	switch backend {
	case BackendS3:
		return s3.NewFetcher(s3.Options{
			Region:    opts.Region,
			AccessKey: opts.AccessKey,
			SecretKey: opts.SecretKey,
		}, ErrNotFound, log)
	case BackendMinio:
		return minio.NewFetcher(minio.Options{
			Endpoint:  opts.Endpoint,
			AccessKey: opts.AccessKey,
			SecretKey: opts.SecretKey,
			UseSSL:    opts.UseSSL,
		}, ErrNotFound, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
