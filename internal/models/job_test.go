package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobLanguage(t *testing.T) {
	assert.Equal(t, DefaultLanguageHint, (&Job{}).Language())
	assert.Equal(t, "fr", (&Job{LanguageHint: "fr"}).Language())
}

func TestJobIsImage(t *testing.T) {
	cases := map[string]bool{
		"in/contract.pdf":  false,
		"in/scan.png":      true,
		"in/SCAN.PNG":      true,
		"in/photo.jpg":     true,
		"in/photo.jpeg":    true,
		"in/fax.tif":       true,
		"in/fax.tiff":      true,
		"in/archive.zip":   false,
		"in/noextension":   false,
		"in/tricky.pdf.gz": false,
	}

	for path, want := range cases {
		job := &Job{Source: SourceLocator{Path: path}}
		assert.Equal(t, want, job.IsImage(), "path %q", path)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	pages := 4
	ok := Success("doc-1", "text", MethodMixedOCR, &pages)
	assert.True(t, ok.Succeeded)
	assert.Equal(t, "text", ok.Text)
	assert.Equal(t, MethodMixedOCR, ok.Method)
	assert.Equal(t, 4, *ok.PageCount)
	assert.False(t, ok.FinishedAt.IsZero())

	bad := Failure("doc-1", "failed to retrieve document")
	assert.False(t, bad.Succeeded)
	assert.Empty(t, bad.Text)
	assert.Nil(t, bad.PageCount)
	assert.Equal(t, "failed to retrieve document", bad.FailureReason)
}
