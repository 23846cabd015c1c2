package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

type Options struct {
	Region    string
	AccessKey string
	SecretKey string
}

// Fetcher reads documents out of S3. Buckets come from the job locator, so
// a single client serves every job.
type Fetcher struct {
	client      *s3.Client
	notFoundErr error
	logger      logger.Logger
}

func NewFetcher(opts Options, notFoundErr error, log logger.Logger) (*Fetcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Fetcher{
		client:      s3.NewFromConfig(awsCfg),
		notFoundErr: notFoundErr,
		logger:      log,
	}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, bucket, path string) ([]byte, error) {
	result, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", f.notFoundErr, bucket, path)
		}
		f.logger.Error("Failed to fetch document from S3",
			logger.String("bucket", bucket),
			logger.String("path", path),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return data, nil
}
