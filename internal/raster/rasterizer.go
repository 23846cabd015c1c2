package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

const (
	DefaultDPI         = 300
	DefaultPageCeiling = 20
	// DefaultTool is the poppler renderer. Overridable for tests and for
	// hosts that install it under a different name.
	DefaultTool = "pdftoppm"
)

// RasterizationError is the fatal condition: the renderer produced no page
// images at all.
type RasterizationError struct {
	Err error
}

func (e *RasterizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rasterization produced no images: %v", e.Err)
	}
	return "rasterization produced no images"
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// Page is one rendered page. Index is 1-based and contiguous.
type Page struct {
	Index int
	Path  string
}

// PageSet owns the scratch directory holding the rendered pages. The caller
// must invoke Cleanup on every exit path.
type PageSet struct {
	Dir   string
	Pages []Page
}

// Cleanup removes the whole scratch area. Deletion errors are ignored; a
// leaked file on a dying disk must not fail the job.
func (ps *PageSet) Cleanup() {
	if ps == nil || ps.Dir == "" {
		return
	}
	_ = os.RemoveAll(ps.Dir)
}

// Rasterizer renders PDF bytes into a bounded ordered sequence of PNG page
// images via an external poppler invocation.
type Rasterizer struct {
	DPI         int
	PageCeiling int
	Tool        string
	logger      logger.Logger
}

func NewRasterizer(dpi, pageCeiling int, log logger.Logger) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if pageCeiling <= 0 {
		pageCeiling = DefaultPageCeiling
	}
	return &Rasterizer{
		DPI:         dpi,
		PageCeiling: pageCeiling,
		Tool:        DefaultTool,
		logger:      log,
	}
}

// ClampPages applies the process-wide ceiling to a requested page count.
func (r *Rasterizer) ClampPages(requested int) int {
	if requested <= 0 || requested > r.PageCeiling {
		return r.PageCeiling
	}
	return requested
}

// Rasterize renders up to maxPages pages into a fresh scratch directory.
// The returned PageSet must be cleaned up by the caller regardless of what
// happens afterwards.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte, maxPages int) (*PageSet, error) {
	pages := r.ClampPages(maxPages)

	dir, err := os.MkdirTemp("", "extract-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	ps := &PageSet{Dir: dir}

	src := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		ps.Cleanup()
		return nil, fmt.Errorf("failed to write source pdf: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.Tool,
		"-png",
		"-r", strconv.Itoa(r.DPI),
		"-f", "1",
		"-l", strconv.Itoa(pages),
		src, prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		// pdftoppm exits non-zero on partially broken PDFs but may still
		// have written usable pages; only the empty result below is fatal.
		r.logger.Warn("Renderer reported an error",
			logger.String("tool", r.Tool),
			logger.String("output", strings.TrimSpace(string(out))),
			logger.Error(err),
		)
	}

	rendered, err := collectPages(dir, "page")
	if err != nil {
		ps.Cleanup()
		return nil, err
	}
	if len(rendered) == 0 {
		ps.Cleanup()
		return nil, &RasterizationError{}
	}

	ps.Pages = rendered
	r.logger.Info("Rasterized document",
		logger.Int("pages", len(rendered)),
		logger.Int("dpi", r.DPI),
	)
	return ps, nil
}

// collectPages globs the rendered page files and renumbers them 1..N in
// render order. pdftoppm zero-pads page numbers, so a lexical sort of the
// numeric suffixes is the render order.
func collectPages(dir, prefix string) ([]Page, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list rendered pages: %w", err)
	}
	sort.Strings(matches)

	pages := make([]Page, 0, len(matches))
	for i, m := range matches {
		pages = append(pages, Page{Index: i + 1, Path: m})
	}
	return pages, nil
}
