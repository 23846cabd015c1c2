package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorCleanText(t *testing.T) {
	d := NewDetector()

	cases := map[string]string{
		"english prose": "The quick brown fox jumps over the lazy dog. " +
			strings.Repeat("A perfectly ordinary sentence with normal words. ", 10),
		"arabic prose":       strings.Repeat("هذا نص عربي سليم تماما ", 20),
		"mixed with digits":  "Invoice 2024-0113\nTotal: 1,250.00 EGP\nDue within 30 days.",
		"few percent signs":  "Growth was 12% in Q1 and 9% in Q2." + strings.Repeat(" More ordinary text follows here.", 10),
		"newlines and tabs":  "column a\tcolumn b\nrow one\trow two\n",
		"short but readable": "Hello, world.",
	}

	for name, sample := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, d.IsCorrupted(sample), "expected clean: %q", sample)
		})
	}
}

func TestDetectorCorruptedText(t *testing.T) {
	d := NewDetector()

	cases := map[string]string{
		"empty":              "",
		"whitespace only":    " \n\t  \n",
		"replacement heavy":  strings.Repeat("�", 50) + strings.Repeat("a", 100),
		"five percent bad":   strings.Repeat("�", 5) + strings.Repeat("x", 95),
		"long percent run":   "some text %%%%%%%% more text",
		"long hash run":      "header ######## body",
		"long at run":        "@@@@@@",
		"control characters": "abc\x00\x01\x02\x03\x04\x05def" + strings.Repeat("x", 50),
		"replacement run":    "start ����� end",
	}

	for name, sample := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, d.IsCorrupted(sample), "expected corrupted: %q", sample)
		})
	}
}

func TestDetectorSampleWindow(t *testing.T) {
	d := NewDetector()

	// Garbage beyond the sample window must not affect the verdict.
	sample := strings.Repeat("clean text here ", 60) + strings.Repeat("�", 500)
	assert.False(t, d.IsCorrupted(sample))
}

func TestDetectorUsable(t *testing.T) {
	d := NewDetector()

	assert.True(t, d.Usable("a normal, fully readable sentence"))
	assert.False(t, d.Usable(""))
	assert.False(t, d.Usable("   \n "))
}

func TestDetectorCustomThresholds(t *testing.T) {
	d := &Detector{SampleSize: 100, MaxSymbolRatio: 0.5, MaxSymbolRun: 100}

	// A permissive detector tolerates what the default one rejects.
	sample := strings.Repeat("�", 10) + strings.Repeat("x", 90)
	assert.False(t, d.IsCorrupted(sample))
	assert.True(t, NewDetector().IsCorrupted(sample))
}
