package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Engine is the OCR capability: recognize one page image into plain text.
// Implementations pass their raw output through the corruption detector and
// return empty text (no error) when it is garbled, so callers can fall
// through to the next engine in the chain.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string, languageHint string) (string, error)
}

// RateLimitError signals a transient provider throttle. RetryAfter carries
// the provider-supplied wait when one was given, else zero.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// tesseractLangs maps language-hint tokens onto tesseract traineddata pack
// names. Unknown tokens are dropped rather than guessed.
var tesseractLangs = map[string]string{
	"ar":  "ara",
	"ara": "ara",
	"en":  "eng",
	"eng": "eng",
	"fr":  "fra",
	"fra": "fra",
	"de":  "deu",
	"deu": "deu",
	"es":  "spa",
	"spa": "spa",
	"tr":  "tur",
	"tur": "tur",
	"ur":  "urd",
	"urd": "urd",
}

// DefaultTesseractLang is the joint pack used when the hint maps to
// nothing.
const DefaultTesseractLang = "ara+eng"

// TesseractLanguage converts a hint like "ar+en" into the tesseract pack
// spec "ara+eng".
func TesseractLanguage(hint string) string {
	var packs []string
	seen := map[string]bool{}
	for _, token := range strings.FieldsFunc(strings.ToLower(hint), func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	}) {
		pack, ok := tesseractLangs[token]
		if !ok || seen[pack] {
			continue
		}
		seen[pack] = true
		packs = append(packs, pack)
	}
	if len(packs) == 0 {
		return DefaultTesseractLang
	}
	return strings.Join(packs, "+")
}
