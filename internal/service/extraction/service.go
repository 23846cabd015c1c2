package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazemkhaled/text-extractor/internal/engine"
	"github.com/hazemkhaled/text-extractor/internal/models"
	"github.com/hazemkhaled/text-extractor/internal/raster"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// DefaultPageTimeout bounds one page's remote OCR call, retries included. A
// stuck provider call must not hang the whole job.
const DefaultPageTimeout = 90 * time.Second

// Service runs one extraction job to a terminal outcome.
type Service interface {
	Extract(ctx context.Context, job *models.Job) *models.ExtractionOutcome
}

// Fetcher retrieves the document bytes for a job.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, path string) ([]byte, error)
}

// DirectExtractor attempts the text-layer shortcut. ok=false means "use
// OCR", never a hard failure.
type DirectExtractor interface {
	Extract(data []byte, languageHint string) (string, bool)
}

// PageRasterizer renders a PDF into a bounded page set.
type PageRasterizer interface {
	Rasterize(ctx context.Context, data []byte, maxPages int) (*raster.PageSet, error)
}

// Notifier delivers the outcome to a callback target. Best effort.
type Notifier interface {
	Notify(ctx context.Context, target string, outcome *models.ExtractionOutcome) error
}

// Config tunes the orchestrator.
type Config struct {
	// PageTimeout bounds the remote engine call per page.
	PageTimeout time.Duration
	// DefaultNotifyTarget is used when the job does not carry its own.
	DefaultNotifyTarget string
}

// Orchestrator sequences the fallback chain: direct text, then rasterize,
// then a per-page remote/local OCR chain. Pages run strictly in order; one
// page's failure never blocks the rest.
type Orchestrator struct {
	fetcher  Fetcher
	direct   DirectExtractor
	raster   PageRasterizer
	remote   engine.Engine // nil when no remote engine is configured
	local    engine.Engine
	notifier Notifier
	cfg      Config
	logger   logger.Logger
}

func NewOrchestrator(
	fetcher Fetcher,
	direct DirectExtractor,
	rasterizer PageRasterizer,
	remote engine.Engine,
	local engine.Engine,
	notifier Notifier,
	cfg Config,
	log logger.Logger,
) *Orchestrator {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultPageTimeout
	}
	return &Orchestrator{
		fetcher:  fetcher,
		direct:   direct,
		raster:   rasterizer,
		remote:   remote,
		local:    local,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
	}
}

// Extract runs the job to completion and delivers the outcome. It always
// returns a terminal outcome; per-page engine trouble degrades the result
// instead of failing the job.
func (o *Orchestrator) Extract(ctx context.Context, job *models.Job) *models.ExtractionOutcome {
	log := o.logger.With(
		logger.String("jobId", job.ID),
		logger.String("documentId", job.DocumentID),
	)
	log.Info("Starting extraction",
		logger.String("bucket", job.Source.Bucket),
		logger.String("path", job.Source.Path),
		logger.String("languageHint", job.Language()),
	)

	outcome := o.run(ctx, job, log)
	o.deliver(ctx, job, outcome, log)

	if outcome.Succeeded {
		log.Info("Extraction succeeded",
			logger.String("method", string(outcome.Method)),
			logger.Int("textLength", len(outcome.Text)),
		)
	} else {
		log.Warn("Extraction failed",
			logger.String("reason", outcome.FailureReason),
		)
	}
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, job *models.Job, log logger.Logger) *models.ExtractionOutcome {
	data, err := o.fetcher.Fetch(ctx, job.Source.Bucket, job.Source.Path)
	if err != nil {
		return models.Failure(job.DocumentID, fmt.Sprintf("failed to retrieve document: %v", err))
	}

	if job.IsImage() {
		return o.extractFromImage(ctx, job, data, log)
	}

	if text, ok := o.direct.Extract(data, job.Language()); ok {
		return models.Success(job.DocumentID, text, models.MethodDirectText, nil)
	}

	pageSet, err := o.raster.Rasterize(ctx, data, job.MaxPages)
	if err != nil {
		return models.Failure(job.DocumentID, fmt.Sprintf("rasterization produced no images: %v", err))
	}
	defer pageSet.Cleanup()

	return o.ocrPages(ctx, job, pageSet.Pages, log)
}

// extractFromImage handles single raster-image jobs: no text layer, no
// rasterization, one page through the engine chain.
func (o *Orchestrator) extractFromImage(ctx context.Context, job *models.Job, data []byte, log logger.Logger) *models.ExtractionOutcome {
	dir, err := os.MkdirTemp("", "extract-image-*")
	if err != nil {
		return models.Failure(job.DocumentID, fmt.Sprintf("failed to create scratch dir: %v", err))
	}
	defer os.RemoveAll(dir)

	imagePath := filepath.Join(dir, "page-1"+strings.ToLower(filepath.Ext(job.Source.Path)))
	if err := os.WriteFile(imagePath, data, 0o600); err != nil {
		return models.Failure(job.DocumentID, fmt.Sprintf("failed to stage image: %v", err))
	}

	return o.ocrPages(ctx, job, []raster.Page{{Index: 1, Path: imagePath}}, log)
}

// ocrPages runs the per-page engine chain and aggregates the result.
func (o *Orchestrator) ocrPages(ctx context.Context, job *models.Job, pages []raster.Page, log logger.Logger) *models.ExtractionOutcome {
	var (
		texts      []string
		remoteUsed bool
		localUsed  bool
	)

	for _, page := range pages {
		text, usedEngine := o.recognizePage(ctx, page, job.Language(), log)
		if text == "" {
			continue
		}
		texts = append(texts, text)
		switch usedEngine {
		case models.MethodRemoteOCR:
			remoteUsed = true
		case models.MethodLocalOCR:
			localUsed = true
		}
	}

	aggregate := strings.TrimSpace(strings.Join(texts, "\n\n"))
	if aggregate == "" {
		return models.Failure(job.DocumentID, "OCR produced no text on any page")
	}

	pageCount := len(pages)
	return models.Success(job.DocumentID, aggregate, methodOf(remoteUsed, localUsed), &pageCount)
}

// recognizePage tries the remote engine first, then the local one. Every
// failure mode on this path degrades to empty text for the page.
func (o *Orchestrator) recognizePage(ctx context.Context, page raster.Page, languageHint string, log logger.Logger) (string, models.ExtractionMethod) {
	if o.remote != nil {
		pageCtx, cancel := context.WithTimeout(ctx, o.cfg.PageTimeout)
		text, err := o.remote.Recognize(pageCtx, page.Path, languageHint)
		cancel()
		if err != nil {
			log.Warn("Remote engine failed on page, falling back to local",
				logger.Int("page", page.Index),
				logger.Error(err),
			)
		} else if text != "" {
			return text, models.MethodRemoteOCR
		}
	}

	text, err := o.local.Recognize(ctx, page.Path, languageHint)
	if err != nil {
		log.Warn("Local engine failed on page",
			logger.Int("page", page.Index),
			logger.Error(err),
		)
		return "", ""
	}
	if text == "" {
		log.Info("Page produced no usable text",
			logger.Int("page", page.Index),
		)
		return "", ""
	}
	return text, models.MethodLocalOCR
}

// deliver sends the outcome to the job's notify target, if any. Delivery
// failure is logged and absorbed; the outcome stands either way.
func (o *Orchestrator) deliver(ctx context.Context, job *models.Job, outcome *models.ExtractionOutcome, log logger.Logger) {
	target := job.NotifyTarget
	if target == "" {
		target = o.cfg.DefaultNotifyTarget
	}
	if target == "" {
		return
	}
	if err := o.notifier.Notify(ctx, target, outcome); err != nil {
		log.Error("Failed to deliver outcome notification",
			logger.String("target", target),
			logger.Error(err),
		)
	}
}

func methodOf(remoteUsed, localUsed bool) models.ExtractionMethod {
	switch {
	case remoteUsed && localUsed:
		return models.MethodMixedOCR
	case remoteUsed:
		return models.MethodRemoteOCR
	default:
		return models.MethodLocalOCR
	}
}
