package extract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

func newTestExtractor(forceOCR []string, alwaysOCR bool) *DirectTextExtractor {
	return NewDirectTextExtractor(NewDetector(), forceOCR, alwaysOCR, logger.NewTestLogger())
}

// buildPDF assembles a minimal single-page PDF with text embedded as one
// literal string, byte offsets computed so the xref table is valid.
func buildPDF(text string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 6)
	buf.WriteString("%PDF-1.4\n")

	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	writeObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func TestDirectTextRejectsNonPDF(t *testing.T) {
	e := newTestExtractor(nil, false)

	// Garbage bytes must be a quiet rejection, not a panic or an error.
	text, ok := e.Extract([]byte("this is not a pdf at all"), "en")
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestDirectTextRejectsEmptyInput(t *testing.T) {
	e := newTestExtractor(nil, false)

	text, ok := e.Extract(nil, "en")
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestDirectTextAlwaysOCROverride(t *testing.T) {
	e := newTestExtractor(nil, true)

	_, ok := e.Extract([]byte("%PDF-1.4 anything"), "en")
	assert.False(t, ok, "always-OCR override must skip the text layer")
}

func TestDirectTextLanguageHintForcesOCR(t *testing.T) {
	e := newTestExtractor([]string{"ar"}, false)

	for _, hint := range []string{"ar", "ar+en", "AR+EN", "en+ar", "en, ar"} {
		_, ok := e.Extract([]byte("%PDF-1.4 anything"), hint)
		assert.False(t, ok, "hint %q must force OCR", hint)
	}
}

func TestDirectTextHintWithoutForcedScript(t *testing.T) {
	e := newTestExtractor([]string{"ar"}, false)

	// English hint does not trip the override; rejection here comes from
	// the parser, not the policy.
	assert.False(t, e.hintForcesOCR("en"))
	assert.False(t, e.hintForcesOCR("en+fr"))
	assert.True(t, e.hintForcesOCR("ar+en"))
	assert.True(t, e.hintForcesOCR("ar"))
}

func TestSplitHint(t *testing.T) {
	assert.Equal(t, []string{"ar", "en"}, splitHint("ar+en"))
	assert.Equal(t, []string{"ar", "en"}, splitHint("AR, EN"))
	assert.Equal(t, []string{"en"}, splitHint("en"))
	assert.Empty(t, splitHint(""))
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "  a   line \n\n\n another\tline  \n \n"
	assert.Equal(t, "a line\nanother line", NormalizeWhitespace(in))

	assert.Equal(t, "", NormalizeWhitespace("   \n \t \n"))
	assert.Equal(t, "unchanged", NormalizeWhitespace("unchanged"))
}

func TestExtractAcceptsCleanTextLayer(t *testing.T) {
	e := newTestExtractor(nil, false)

	long := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 7))
	text, ok := e.Extract(buildPDF(long), "en")

	require.True(t, ok)
	assert.Contains(t, text, "quick brown fox")
	assert.GreaterOrEqual(t, len([]rune(text)), e.MinLength,
		"accepted text is never shorter than the minimum length")
}

func TestExtractRejectsShortTextLayer(t *testing.T) {
	e := newTestExtractor(nil, false)

	text, ok := e.Extract(buildPDF("Hello world"), "en")
	assert.False(t, ok)
	assert.Empty(t, text)

	// raising the bar above an otherwise acceptable layer rejects it too
	e.MinLength = 1000
	long := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 7))
	_, ok = e.Extract(buildPDF(long), "en")
	assert.False(t, ok)
}
