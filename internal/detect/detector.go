package detect

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
	"github.com/shopmirror/shopmirror/internal/metrics"
	"github.com/shopmirror/shopmirror/pkg/poll"
)

// semanticFallbackConfidence is reported when the semantic path found a name
// or images but no scored price to derive confidence from.
const semanticFallbackConfidence = 0.7

// Source supplies page snapshots to a detection run. A live source (headless
// browser) re-snapshots on each call; a static source always returns the
// same parsed page.
type Source interface {
	// Snapshot returns the current page state.
	Snapshot(ctx context.Context) (*dom.Page, error)
	// Busy reports whether the page still shows loading indicators.
	Busy(ctx context.Context) bool
}

// StaticSource wraps an already-parsed page.
type StaticSource struct {
	page *dom.Page
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(p *dom.Page) *StaticSource { return &StaticSource{page: p} }

func (s *StaticSource) Snapshot(context.Context) (*dom.Page, error) { return s.page, nil }

func (s *StaticSource) Busy(context.Context) bool { return PageBusy(s.page) }

// PageBusy reports whether a snapshot carries loading indicators: busy
// markers, spinner classes, or skeleton placeholders.
func PageBusy(p *dom.Page) bool {
	return len(p.Doc.Find(`[aria-busy="true"], [class*="loading"], [class*="skeleton"]`).Nodes) > 0
}

// Config tunes a Detector. The zero value uses the default wait cadence.
type Config struct {
	// Wait bounds the dynamic-content gate before detection starts.
	Wait poll.Config
}

// Detector runs the detection pipeline. It is stateless across runs and safe
// for reuse; each run reads the page fresh, since the host page may mutate
// the document underneath us at any time.
type Detector struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Detector.
func New(cfg Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Wait.Interval <= 0 {
		cfg.Wait.Interval = poll.DefaultConfig.Interval
	}
	if cfg.Wait.Timeout <= 0 {
		cfg.Wait.Timeout = poll.DefaultConfig.Timeout
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Detect waits out loading indicators within the configured budget, then
// runs the pipeline against the source's snapshot. It always produces a
// Result: a failed snapshot or timed-out wait degrades to sentinel values,
// never an error.
func (d *Detector) Detect(ctx context.Context, src Source) Result {
	if src.Busy(ctx) {
		if !poll.Settled(ctx, d.cfg.Wait, src.Busy) {
			d.logger.Debug("content wait budget spent, proceeding anyway")
		}
	}

	page, err := src.Snapshot(ctx)
	if err != nil {
		d.logger.Warn("snapshot failed", "err", err)
		return Result{
			Name:       NameNotFound,
			Price:      PriceNotFound,
			Currency:   currency.USD,
			Confidence: 0,
			Method:     MethodSemantic,
		}
	}

	return d.DetectPage(page)
}

// DetectPage runs the pipeline against one snapshot: structured data first
// (short-circuits on success), then area location and the four field
// extractors against that single area.
func (d *Detector) DetectPage(p *dom.Page) Result {
	start := time.Now()

	if r, ok := extractStructured(p, d.logger); ok {
		d.logger.Info("detected via structured data", "name", r.Name, "price", r.Price)
		metrics.RecordDetection(string(r.Method), r.Found(), r.Sale != nil, time.Since(start))
		return r
	}

	area := locateProductArea(p, d.logger)

	name := extractName(p, area, d.logger)
	hit, havePrice := extractPrice(p, area, d.logger)
	images := extractImages(p, area, d.logger)

	r := Result{
		Name:   name,
		Images: images,
		Method: MethodSemantic,
	}

	if havePrice {
		r.Price = hit.Display
		r.NumericPrice = hit.Value
		r.Currency = hit.Code
		r.Confidence = hit.Confidence
		r.Sale = detectSale(p, hit.Element, d.logger)
	} else {
		r.Price = PriceNotFound
		r.Currency = currency.Resolve("", p.URL)
		r.Confidence = semanticFallbackConfidence
		metrics.RecordFieldMiss("price")
	}
	if name == NameNotFound {
		metrics.RecordFieldMiss("name")
	}
	if len(images) == 0 {
		metrics.RecordFieldMiss("images")
	}

	d.logger.Info("detection complete",
		"name", r.Name, "price", r.Price, "images", len(r.Images),
		"sale", r.Sale != nil, "method", r.Method)
	metrics.RecordDetection(string(r.Method), r.Found(), r.Sale != nil, time.Since(start))

	return r
}
