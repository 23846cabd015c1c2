package models

import (
	"strings"
	"time"
)

// ExtractionMethod identifies which strategy produced the final text.
type ExtractionMethod string

const (
	MethodDirectText ExtractionMethod = "direct-text"
	MethodRemoteOCR  ExtractionMethod = "remote-ocr"
	MethodLocalOCR   ExtractionMethod = "local-ocr"
	// MethodMixedOCR is reported when different pages of the same document
	// were recognized by different engines.
	MethodMixedOCR ExtractionMethod = "remote-ocr+local-ocr"
)

// DefaultLanguageHint is assumed when a job carries no hint. Most of our
// traffic is bilingual Arabic/English documents.
const DefaultLanguageHint = "ar+en"

// SourceLocator tells the storage backend where to fetch the document from.
type SourceLocator struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

// Job is one extraction request. It is built once from the inbound request
// and never mutated afterwards.
type Job struct {
	ID           string        `json:"id"`
	DocumentID   string        `json:"documentId"`
	Source       SourceLocator `json:"source"`
	LanguageHint string        `json:"languageHint"`
	MaxPages     int           `json:"maxPages"`
	NotifyTarget string        `json:"notifyTarget,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Language returns the job's language hint, falling back to the bilingual
// default.
func (j *Job) Language() string {
	if j.LanguageHint == "" {
		return DefaultLanguageHint
	}
	return j.LanguageHint
}

// IsImage reports whether the source path points at a raster image rather
// than a PDF. Image jobs skip direct-text extraction and rasterization.
func (j *Job) IsImage() bool {
	p := strings.ToLower(j.Source.Path)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// ExtractionOutcome is the terminal result of a job. Built exactly once,
// then handed to the notifier and/or the synchronous caller.
type ExtractionOutcome struct {
	DocumentID    string           `json:"documentId"`
	Succeeded     bool             `json:"succeeded"`
	Text          string           `json:"text,omitempty"`
	Method        ExtractionMethod `json:"method,omitempty"`
	PageCount     *int             `json:"pageCount,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
	FinishedAt    time.Time        `json:"finishedAt"`
}

// Success builds a successful outcome. pageCount is nil for the direct-text
// path, where no pages are rasterized.
func Success(documentID, text string, method ExtractionMethod, pageCount *int) *ExtractionOutcome {
	return &ExtractionOutcome{
		DocumentID: documentID,
		Succeeded:  true,
		Text:       text,
		Method:     method,
		PageCount:  pageCount,
		FinishedAt: time.Now(),
	}
}

// Failure builds a failed outcome with the given reason.
func Failure(documentID, reason string) *ExtractionOutcome {
	return &ExtractionOutcome{
		DocumentID:    documentID,
		Succeeded:     false,
		FailureReason: reason,
		FinishedAt:    time.Now(),
	}
}
