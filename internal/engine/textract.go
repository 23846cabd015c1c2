package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/hazemkhaled/text-extractor/internal/extract"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// TextractEngine is the alternative hosted OCR variant for deployments that
// run on AWS. Plain line detection only; the pipeline wants raw text, not
// tables or forms.
type TextractEngine struct {
	client   *textract.Client
	retry    *RetryPolicy
	detector *extract.Detector
	logger   logger.Logger
}

type TextractOptions struct {
	Region    string
	AccessKey string
	SecretKey string
}

func NewTextractEngine(ctx context.Context, opts TextractOptions, retry *RetryPolicy, detector *extract.Detector, log logger.Logger) (*TextractEngine, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractEngine{
		client:   textract.NewFromConfig(awsCfg),
		retry:    retry,
		detector: detector,
		logger:   log,
	}, nil
}

func (t *TextractEngine) Name() string { return "remote-ocr" }

func (t *TextractEngine) Recognize(ctx context.Context, imagePath string, languageHint string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read page image: %w", err)
	}

	text, attempts, err := t.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return t.detect(ctx, data)
	})
	if err != nil {
		t.logger.Warn("Textract OCR failed",
			logger.Int("attempts", attempts),
			logger.Error(err),
		)
		return "", err
	}

	text = strings.TrimSpace(text)
	if !t.detector.Usable(text) {
		t.logger.Info("Textract output rejected as corrupted")
		return "", nil
	}
	return text, nil
}

func (t *TextractEngine) detect(ctx context.Context, image []byte) (string, error) {
	result, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		if isThrottle(err) {
			return "", &RateLimitError{Err: err}
		}
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	var lines []string
	for _, block := range result.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func isThrottle(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var throttling *types.ThrottlingException
	var limit *types.LimitExceededException
	return errors.As(err, &throughput) || errors.As(err, &throttling) || errors.As(err, &limit)
}
