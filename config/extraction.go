package config

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hazemkhaled/text-extractor/internal/extract"
	"github.com/hazemkhaled/text-extractor/internal/raster"
)

var (
	extractionOnce   sync.Once
	extractionConfig *ExtractionConfig
)

// ExtractionConfig carries the heuristics knobs of the pipeline. Env vars
// set the baseline; an optional YAML tuning file (TUNING_FILE) overrides
// them, which is how per-deployment threshold experiments ship without a
// rebuild.
type ExtractionConfig struct {
	RasterDPI      int     `yaml:"rasterDpi"`
	PageCeiling    int     `yaml:"pageCeiling"`
	MinTextLength  int     `yaml:"minTextLength"`
	MaxSymbolRatio float64 `yaml:"maxSymbolRatio"`
	MaxSymbolRun   int     `yaml:"maxSymbolRun"`
	// ForceOCRHints lists language-hint tokens whose documents always go
	// through OCR even when a text layer looks clean.
	ForceOCRHints []string `yaml:"forceOcrHints"`
	AlwaysOCR     bool     `yaml:"alwaysOcr"`
}

func GetExtractionConfig() *ExtractionConfig {
	extractionOnce.Do(func() {
		loadEnv()
		extractionConfig = &ExtractionConfig{
			RasterDPI:      getInt("RASTER_DPI", raster.DefaultDPI),
			PageCeiling:    getInt("PAGE_CEILING", raster.DefaultPageCeiling),
			MinTextLength:  getInt("MIN_DIRECT_TEXT_LENGTH", extract.DefaultMinTextLength),
			MaxSymbolRatio: getFloat("CORRUPTION_MAX_RATIO", extract.DefaultMaxSymbolRatio),
			MaxSymbolRun:   getInt("CORRUPTION_MAX_RUN", extract.DefaultMaxSymbolRun),
			ForceOCRHints:  getList("FORCE_OCR_LANGS", []string{"ar"}),
			AlwaysOCR:      getBool("ALWAYS_OCR", false),
		}

		if path := getString("TUNING_FILE", ""); path != "" {
			if err := extractionConfig.applyTuningFile(path); err != nil {
				log.Printf("Warning: failed to apply tuning file %s: %v", path, err)
			}
		}
	})
	return extractionConfig
}

func (c *ExtractionConfig) applyTuningFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Detector builds a corruption detector from the configured thresholds.
func (c *ExtractionConfig) Detector() *extract.Detector {
	d := extract.NewDetector()
	if c.MaxSymbolRatio > 0 {
		d.MaxSymbolRatio = c.MaxSymbolRatio
	}
	if c.MaxSymbolRun > 0 {
		d.MaxSymbolRun = c.MaxSymbolRun
	}
	return d
}
