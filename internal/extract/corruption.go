package extract

import (
	"strings"
	"unicode"
)

// Corruption detector defaults. Tuned against failed decodes of scanned
// PDFs: broken font encodings show up as clusters of replacement characters
// and a small set of symbols that never cluster in real prose.
const (
	DefaultSampleSize     = 800
	DefaultMaxSymbolRatio = 0.03
	DefaultMaxSymbolRun   = 6
)

// Detector classifies a text sample as usable or garbled based on the
// distribution of suspect characters. It is a heuristic: false negatives
// are acceptable, over-rejection of valid text is not.
type Detector struct {
	// SampleSize is how many leading runes are inspected.
	SampleSize int
	// MaxSymbolRatio is the suspect-character fraction above which the
	// sample counts as corrupted.
	MaxSymbolRatio float64
	// MaxSymbolRun is the shortest run of a single suspect symbol that
	// counts as corrupted on its own.
	MaxSymbolRun int
}

// NewDetector returns a detector with the default thresholds.
func NewDetector() *Detector {
	return &Detector{
		SampleSize:     DefaultSampleSize,
		MaxSymbolRatio: DefaultMaxSymbolRatio,
		MaxSymbolRun:   DefaultMaxSymbolRun,
	}
}

// suspect reports whether r is one of the characters that cluster
// abnormally in failed decodes.
func suspect(r rune) bool {
	if r == '�' {
		return true
	}
	if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	switch r {
	case '%', '#', '@':
		return true
	}
	return false
}

// IsCorrupted classifies text. Empty or whitespace-only input is always
// corrupted.
func (d *Detector) IsCorrupted(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	var (
		total    int
		bad      int
		run      int
		lastRune rune
	)
	for _, r := range text {
		total++
		if total > d.SampleSize {
			break
		}
		if !suspect(r) {
			run = 0
			lastRune = 0
			continue
		}
		bad++
		if r == lastRune || lastRune == 0 {
			run++
		} else {
			run = 1
		}
		lastRune = r
		if run >= d.MaxSymbolRun {
			return true
		}
	}
	if total > d.SampleSize {
		total = d.SampleSize
	}

	return float64(bad)/float64(total) > d.MaxSymbolRatio
}

// Usable is the inverse of IsCorrupted, with whitespace trimmed first. It
// is what the engines and the orchestrator call on candidate output.
func (d *Detector) Usable(text string) bool {
	return !d.IsCorrupted(text)
}
