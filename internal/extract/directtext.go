package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// DefaultMinTextLength is the shortest normalized text layer we accept.
// Anything below it is almost always a cover page or a broken layer.
const DefaultMinTextLength = 200

// DirectTextExtractor pulls the embedded text layer out of a PDF without
// rasterization. It never fails hard: any parser problem is a rejection and
// the caller falls through to OCR.
type DirectTextExtractor struct {
	MinLength int
	// ForceOCRHints lists language-hint tokens (e.g. "ar") whose documents
	// always go through OCR. Scanned documents in these scripts frequently
	// carry a low-fidelity embedded layer that passes naive checks.
	ForceOCRHints []string
	// AlwaysOCR disables the direct-text path entirely.
	AlwaysOCR bool

	detector *Detector
	logger   logger.Logger
}

func NewDirectTextExtractor(detector *Detector, forceOCRHints []string, alwaysOCR bool, log logger.Logger) *DirectTextExtractor {
	return &DirectTextExtractor{
		MinLength:     DefaultMinTextLength,
		ForceOCRHints: forceOCRHints,
		AlwaysOCR:     alwaysOCR,
		detector:      detector,
		logger:        log,
	}
}

// Extract attempts the text-layer shortcut. The second return value reports
// whether the result was accepted; on rejection the text is empty.
func (e *DirectTextExtractor) Extract(data []byte, languageHint string) (string, bool) {
	if e.AlwaysOCR {
		return "", false
	}
	if e.hintForcesOCR(languageHint) {
		e.logger.Info("Language hint forces OCR, skipping text layer",
			logger.String("hint", languageHint),
		)
		return "", false
	}

	text, err := readTextLayer(data)
	if err != nil {
		e.logger.Warn("Text layer extraction failed, falling back to OCR",
			logger.Error(err),
		)
		return "", false
	}

	text = NormalizeWhitespace(text)
	if len([]rune(text)) < e.MinLength {
		return "", false
	}
	if e.detector.IsCorrupted(text) {
		e.logger.Info("Text layer rejected as corrupted")
		return "", false
	}

	return text, true
}

func (e *DirectTextExtractor) hintForcesOCR(hint string) bool {
	for _, token := range splitHint(hint) {
		for _, forced := range e.ForceOCRHints {
			if token == forced {
				return true
			}
		}
	}
	return false
}

// splitHint breaks a hint like "ar+en" into its tokens.
func splitHint(hint string) []string {
	parts := strings.FieldsFunc(strings.ToLower(hint), func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	return parts
}

// readTextLayer walks every page of the PDF and concatenates its plain
// text. The pdf library panics on some malformed inputs, so the whole walk
// runs under a recover.
func readTextLayer(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// One broken page does not invalidate the rest of the layer.
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// NormalizeWhitespace collapses runs of blanks inside lines and drops empty
// lines, preserving line structure.
func NormalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
