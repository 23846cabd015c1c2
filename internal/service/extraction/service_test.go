package extraction

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemkhaled/text-extractor/internal/models"
	"github.com/hazemkhaled/text-extractor/internal/raster"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, bucket, path string) ([]byte, error) {
	return f.data, f.err
}

type fakeDirect struct {
	text string
	ok   bool
}

func (f *fakeDirect) Extract(data []byte, languageHint string) (string, bool) {
	return f.text, f.ok
}

type fakeRasterizer struct {
	pages int
	err   error

	pageSet *raster.PageSet
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, data []byte, maxPages int) (*raster.PageSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	dir, err := os.MkdirTemp("", "fake-pages-*")
	if err != nil {
		return nil, err
	}
	ps := &raster.PageSet{Dir: dir}
	for i := 1; i <= f.pages; i++ {
		ps.Pages = append(ps.Pages, raster.Page{Index: i, Path: dir})
	}
	f.pageSet = ps
	return ps, nil
}

// fakeEngine returns one scripted result per page, cycling never: each call
// consumes the next entry.
type fakeEngine struct {
	name    string
	results []engineResult
	calls   int
}

type engineResult struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(ctx context.Context, imagePath string, languageHint string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		return "", errors.New("unexpected extra call")
	}
	return f.results[i].text, f.results[i].err
}

type fakeNotifier struct {
	targets  []string
	outcomes []*models.ExtractionOutcome
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, target string, outcome *models.ExtractionOutcome) error {
	f.targets = append(f.targets, target)
	f.outcomes = append(f.outcomes, outcome)
	return f.err
}

type fixture struct {
	fetcher  *fakeFetcher
	direct   *fakeDirect
	raster   *fakeRasterizer
	remote   *fakeEngine
	local    *fakeEngine
	notifier *fakeNotifier
	cfg      Config
}

func (fx *fixture) orchestrator() *Orchestrator {
	// the remote engine slot stays a true nil unless the fixture sets one
	o := NewOrchestrator(fx.fetcher, fx.direct, fx.raster, nil, fx.local, fx.notifier, fx.cfg, logger.NewTestLogger())
	if fx.remote != nil {
		o.remote = fx.remote
	}
	return o
}

func defaultFixture() *fixture {
	return &fixture{
		fetcher:  &fakeFetcher{data: []byte("%PDF-1.4 fake")},
		direct:   &fakeDirect{},
		raster:   &fakeRasterizer{pages: 2},
		local:    &fakeEngine{name: "local-ocr"},
		notifier: &fakeNotifier{},
	}
}

func pdfJob() *models.Job {
	return &models.Job{
		ID:         "job-1",
		DocumentID: "doc-1",
		Source:     models.SourceLocator{Bucket: "docs", Path: "in/contract.pdf"},
	}
}

func TestExtractDirectTextShortCircuit(t *testing.T) {
	fx := defaultFixture()
	fx.direct = &fakeDirect{text: "embedded text layer content", ok: true}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "embedded text layer content", outcome.Text)
	assert.Equal(t, models.MethodDirectText, outcome.Method)
	assert.Nil(t, outcome.PageCount)
	assert.Equal(t, "doc-1", outcome.DocumentID)
}

func TestExtractFetchFailureIsFatal(t *testing.T) {
	fx := defaultFixture()
	fx.fetcher = &fakeFetcher{err: errors.New("no such key")}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.False(t, outcome.Succeeded)
	assert.Contains(t, outcome.FailureReason, "failed to retrieve document")
	assert.Empty(t, outcome.Text)
}

func TestExtractRasterizationFailureIsFatal(t *testing.T) {
	fx := defaultFixture()
	fx.raster = &fakeRasterizer{err: &raster.RasterizationError{}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.False(t, outcome.Succeeded)
	assert.Contains(t, outcome.FailureReason, "rasterization produced no images")
}

func TestExtractRemoteOCRAllPages(t *testing.T) {
	fx := defaultFixture()
	fx.remote = &fakeEngine{name: "remote-ocr", results: []engineResult{
		{text: "page one"},
		{text: "page two"},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "page one\n\npage two", outcome.Text)
	assert.Equal(t, models.MethodRemoteOCR, outcome.Method)
	require.NotNil(t, outcome.PageCount)
	assert.Equal(t, 2, *outcome.PageCount)
	assert.Equal(t, 0, fx.local.calls, "local engine must stay idle when remote handles every page")
}

func TestExtractRemoteFailureFallsBackToLocal(t *testing.T) {
	fx := defaultFixture()
	fx.remote = &fakeEngine{name: "remote-ocr", results: []engineResult{
		{text: "page one"},
		{err: errors.New("provider down")},
	}}
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "page two from tesseract"},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "page one\n\npage two from tesseract", outcome.Text)
	assert.Equal(t, models.MethodMixedOCR, outcome.Method)
}

func TestExtractRemoteEmptyOutputFallsBackToLocal(t *testing.T) {
	fx := defaultFixture()
	fx.raster = &fakeRasterizer{pages: 1}
	fx.remote = &fakeEngine{name: "remote-ocr", results: []engineResult{
		{text: ""}, // corrupted output degraded to empty
	}}
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "rescued by tesseract"},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "rescued by tesseract", outcome.Text)
	assert.Equal(t, models.MethodLocalOCR, outcome.Method)
}

func TestExtractLocalOnlyChain(t *testing.T) {
	fx := defaultFixture()
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "first page"},
		{text: "second page"},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, models.MethodLocalOCR, outcome.Method)
	assert.Equal(t, "first page\n\nsecond page", outcome.Text)
}

func TestExtractPageFailureDoesNotAbortJob(t *testing.T) {
	fx := defaultFixture()
	fx.raster = &fakeRasterizer{pages: 3}
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "page one"},
		{err: errors.New("tesseract crashed")},
		{text: "page three"},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "page one\n\npage three", outcome.Text)
	require.NotNil(t, outcome.PageCount)
	assert.Equal(t, 3, *outcome.PageCount, "page count reflects rendered pages, not recognized ones")
}

func TestExtractAllPagesEmptyIsFatal(t *testing.T) {
	fx := defaultFixture()
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: ""},
		{text: "   "},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())

	require.False(t, outcome.Succeeded)
	assert.Equal(t, "OCR produced no text on any page", outcome.FailureReason)
}

func TestExtractSucceededImpliesNonEmptyText(t *testing.T) {
	fx := defaultFixture()
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "\n \n"},
		{text: ""},
	}}

	outcome := fx.orchestrator().Extract(context.Background(), pdfJob())
	if outcome.Succeeded {
		assert.NotEmpty(t, outcome.Text)
	} else {
		assert.Empty(t, outcome.Text)
	}
}

func TestExtractScratchCleanup(t *testing.T) {
	fx := defaultFixture()
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "page one"},
		{text: "page two"},
	}}

	fx.orchestrator().Extract(context.Background(), pdfJob())

	require.NotNil(t, fx.raster.pageSet)
	assert.NoDirExists(t, fx.raster.pageSet.Dir)
}

func TestExtractImageJobSkipsRasterization(t *testing.T) {
	fx := defaultFixture()
	fx.fetcher = &fakeFetcher{data: []byte("fake png bytes")}
	fx.raster = &fakeRasterizer{err: errors.New("must not be called")}
	fx.local = &fakeEngine{name: "local-ocr", results: []engineResult{
		{text: "text from the scanned image"},
	}}

	job := pdfJob()
	job.Source.Path = "in/scan.png"

	outcome := fx.orchestrator().Extract(context.Background(), job)

	require.True(t, outcome.Succeeded)
	assert.Equal(t, "text from the scanned image", outcome.Text)
	require.NotNil(t, outcome.PageCount)
	assert.Equal(t, 1, *outcome.PageCount)
}

func TestExtractNotifiesJobTarget(t *testing.T) {
	fx := defaultFixture()
	fx.direct = &fakeDirect{text: "layer", ok: true}

	job := pdfJob()
	job.NotifyTarget = "https://callbacks.example/extract"

	outcome := fx.orchestrator().Extract(context.Background(), job)

	require.Len(t, fx.notifier.targets, 1)
	assert.Equal(t, "https://callbacks.example/extract", fx.notifier.targets[0])
	assert.Same(t, outcome, fx.notifier.outcomes[0])
}

func TestExtractNotifiesDefaultTarget(t *testing.T) {
	fx := defaultFixture()
	fx.direct = &fakeDirect{text: "layer", ok: true}
	fx.cfg.DefaultNotifyTarget = "https://callbacks.example/default"

	fx.orchestrator().Extract(context.Background(), pdfJob())

	require.Len(t, fx.notifier.targets, 1)
	assert.Equal(t, "https://callbacks.example/default", fx.notifier.targets[0])
}

func TestExtractNotifyFailureIsAbsorbed(t *testing.T) {
	fx := defaultFixture()
	fx.direct = &fakeDirect{text: "layer", ok: true}
	fx.notifier = &fakeNotifier{err: errors.New("callback unreachable")}

	job := pdfJob()
	job.NotifyTarget = "https://callbacks.example/extract"

	outcome := fx.orchestrator().Extract(context.Background(), job)
	assert.True(t, outcome.Succeeded, "delivery failure must not change the outcome")
}

func TestExtractNoTargetNoNotify(t *testing.T) {
	fx := defaultFixture()
	fx.direct = &fakeDirect{text: "layer", ok: true}

	fx.orchestrator().Extract(context.Background(), pdfJob())
	assert.Empty(t, fx.notifier.targets)
}

func TestMethodOf(t *testing.T) {
	assert.Equal(t, models.MethodMixedOCR, methodOf(true, true))
	assert.Equal(t, models.MethodRemoteOCR, methodOf(true, false))
	assert.Equal(t, models.MethodLocalOCR, methodOf(false, true))
	assert.Equal(t, models.MethodLocalOCR, methodOf(false, false))
}
