package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTesseractLanguage(t *testing.T) {
	cases := map[string]string{
		"ar":      "ara",
		"en":      "eng",
		"ar+en":   "ara+eng",
		"AR, EN":  "ara+eng",
		"en+ar":   "eng+ara",
		"ara+eng": "ara+eng",
		"fr":      "fra",
		"de+es":   "deu+spa",
		"ar+ara":  "ara",
		"":        DefaultTesseractLang,
		"xx":      DefaultTesseractLang,
		"zz+yy":   DefaultTesseractLang,
	}

	for hint, want := range cases {
		assert.Equal(t, want, TesseractLanguage(hint), "hint %q", hint)
	}
}

func TestRateLimitErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exhausted")
	err := error(&RateLimitError{RetryAfter: 13 * time.Second, Err: cause})

	assert.ErrorIs(t, err, cause)

	var rle *RateLimitError
	assert.True(t, errors.As(err, &rle))
	assert.Equal(t, 13*time.Second, rle.RetryAfter)
	assert.Contains(t, err.Error(), "13s")
}
