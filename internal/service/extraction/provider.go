package extraction

import (
	"context"
	"fmt"
	"io"

	"github.com/hazemkhaled/text-extractor/config"
	"github.com/hazemkhaled/text-extractor/internal/engine"
	"github.com/hazemkhaled/text-extractor/internal/extract"
	"github.com/hazemkhaled/text-extractor/internal/notify"
	"github.com/hazemkhaled/text-extractor/internal/raster"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
	"github.com/hazemkhaled/text-extractor/pkg/storage"
)

// GetService wires the pipeline from process configuration: storage
// fetcher, heuristics, rasterizer, engine chain, and notifier.
func GetService(log logger.Logger) (*Orchestrator, error) {
	srvCfg := config.GetServerConfig()
	extCfg := config.GetExtractionConfig()
	engCfg := config.GetEngineConfig()
	stoCfg := config.GetStorageConfig()

	fetcher, err := storage.NewFetcher(storage.BackendType(stoCfg.Backend), storage.Options{
		Region:    stoCfg.Region,
		Endpoint:  stoCfg.Endpoint,
		AccessKey: stoCfg.AccessKey,
		SecretKey: stoCfg.SecretKey,
		UseSSL:    stoCfg.UseSSL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	detector := extCfg.Detector()

	direct := extract.NewDirectTextExtractor(detector, extCfg.ForceOCRHints, extCfg.AlwaysOCR, log)
	direct.MinLength = extCfg.MinTextLength

	rasterizer := raster.NewRasterizer(extCfg.RasterDPI, extCfg.PageCeiling, log)

	remote, err := buildRemoteEngine(engCfg, detector, log)
	if err != nil {
		return nil, err
	}
	local := engine.NewTesseractEngine(detector, log)

	notifier := notify.NewNotifier(srvCfg.NotifyTimeout, srvCfg.NotifyTextCap, srvCfg.NotifySecret, log)

	return NewOrchestrator(
		fetcher,
		direct,
		rasterizer,
		remote,
		local,
		notifier,
		Config{
			PageTimeout:         engCfg.PageTimeout,
			DefaultNotifyTarget: srvCfg.NotifyDefaultURL,
		},
		log,
	), nil
}

// buildRemoteEngine selects the remote variant by credential availability:
// Gemini when a key is present, Textract on AWS credentials, otherwise nil
// and the pipeline runs local-only.
func buildRemoteEngine(cfg *config.EngineConfig, detector *extract.Detector, log logger.Logger) (engine.Engine, error) {
	retry := engine.NewRetryPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay, log)

	if cfg.HasGemini() {
		log.Info("Using Gemini remote OCR engine",
			logger.String("model", cfg.GeminiModel),
		)
		return engine.NewGeminiEngine(cfg.GeminiEndpoint, cfg.GeminiAPIKey, cfg.GeminiModel, retry, detector, log), nil
	}

	if cfg.HasTextract() {
		log.Info("Using Textract remote OCR engine",
			logger.String("region", cfg.TextractRegion),
		)
		eng, err := engine.NewTextractEngine(context.Background(), engine.TextractOptions{
			Region:    cfg.TextractRegion,
			AccessKey: cfg.TextractAccessKey,
			SecretKey: cfg.TextractSecretKey,
		}, retry, detector, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create textract engine: %w", err)
		}
		return eng, nil
	}

	log.Warn("No remote OCR engine configured, running local-only")
	return nil, nil
}

// RemoteEngineName reports the configured remote variant for the health
// endpoint, or empty when none is configured.
func RemoteEngineName() string {
	cfg := config.GetEngineConfig()
	switch {
	case cfg.HasGemini():
		return "gemini"
	case cfg.HasTextract():
		return "textract"
	default:
		return ""
	}
}

// Close releases the long-lived local engine. Call once at shutdown.
func (o *Orchestrator) Close() error {
	if c, ok := o.local.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
