package engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/hazemkhaled/text-extractor/internal/extract"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// TesseractEngine is the offline fallback. The underlying client is
// expensive to initialize, so the process keeps exactly one: lazily created
// on first use, serialized with a mutex, torn down only at shutdown.
type TesseractEngine struct {
	detector *extract.Detector
	logger   logger.Logger

	mu     sync.Mutex
	once   sync.Once
	client *gosseract.Client
}

func NewTesseractEngine(detector *extract.Detector, log logger.Logger) *TesseractEngine {
	return &TesseractEngine{
		detector: detector,
		logger:   log,
	}
}

func (t *TesseractEngine) Name() string { return "local-ocr" }

// Recognize OCRs one page image. Failures here are deterministic, so there
// is no retry; a corrupted result degrades to empty text.
func (t *TesseractEngine) Recognize(ctx context.Context, imagePath string, languageHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prepared, err := t.preprocess(imagePath)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.once.Do(func() {
		t.client = gosseract.NewClient()
		t.logger.Info("Initialized tesseract client")
	})
	if t.client == nil {
		return "", fmt.Errorf("tesseract engine is closed")
	}

	lang := TesseractLanguage(languageHint)
	if err := t.client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return "", fmt.Errorf("failed to set language %q: %w", lang, err)
	}
	if err := t.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := t.client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}

	text = strings.TrimSpace(text)
	if !t.detector.Usable(text) {
		t.logger.Info("Local OCR output rejected as corrupted")
		return "", nil
	}
	return text, nil
}

// preprocess flattens the page to grayscale and lifts contrast a little.
// Scanned pages OCR measurably better after this, and it keeps only one
// decoded page in memory at a time.
func (t *TesseractEngine) preprocess(imagePath string) ([]byte, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open page image: %w", err)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 10)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

// Close tears the singleton client down. Called once at process shutdown.
func (t *TesseractEngine) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}
