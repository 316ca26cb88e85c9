// Package render drives a headless browser for product pages that build
// their content client-side. After the page executes, the renderer bakes
// each element's computed layout into data attributes and serializes the
// document, so the rest of the pipeline works on the rendered truth through
// the same snapshot model the static fetcher produces.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/shopmirror/shopmirror/internal/detect"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// bakeMetricsJS annotates every element with its rendered geometry and the
// computed style properties detection scores on. Attribute names mirror the
// override attributes the snapshot layout model reads.
const bakeMetricsJS = `() => {
	const els = document.querySelectorAll('*');
	for (const el of els) {
		const rect = el.getBoundingClientRect();
		const style = getComputedStyle(el);
		el.setAttribute('data-sm-top', String(rect.top + window.scrollY));
		el.setAttribute('data-sm-width', String(rect.width));
		el.setAttribute('data-sm-height', String(rect.height));
		el.setAttribute('data-sm-font-size', style.fontSize);
		el.setAttribute('data-sm-color', style.color);
		el.setAttribute('data-sm-bg', style.backgroundColor);
		el.setAttribute('data-sm-deco', style.textDecorationLine);
	}
	return els.length;
}`

// busyJS reports whether the page still shows loading indicators.
const busyJS = `() => {
	return document.readyState !== 'complete' ||
		document.querySelector('[aria-busy="true"], [class*="loading"], [class*="skeleton"]') !== null;
}`

// Config configures the headless browser.
type Config struct {
	// ControlURL connects to an already-running browser. Empty launches a
	// managed one.
	ControlURL string
	// UserAgent overrides the browser's default when set.
	UserAgent string
	// NavigateTimeout bounds navigation plus initial load per page.
	NavigateTimeout time.Duration
}

// Renderer owns one browser instance shared across page loads.
type Renderer struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   *slog.Logger
}

// New launches (or connects to) a browser.
func New(cfg Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}

	r := &Renderer{cfg: cfg, logger: logger}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		r.launcher = launcher.New().Headless(true)
		u, err := r.launcher.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if r.launcher != nil {
			r.launcher.Kill()
		}
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	r.browser = browser

	return r, nil
}

// Close shuts the browser down. Managed browsers are killed; attached ones
// are only disconnected.
func (r *Renderer) Close() error {
	err := r.browser.Close()
	if r.launcher != nil {
		r.launcher.Kill()
	}
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// Load navigates a fresh tab to pageURL and returns it as a detection
// source. The source re-snapshots the live document on every call, so
// detection sees mutations the page makes after load.
func (r *Renderer) Load(ctx context.Context, pageURL string) (detect.Source, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	page = page.Context(ctx).Timeout(r.cfg.NavigateTimeout)

	if r.cfg.UserAgent != "" {
		override := proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}
		if err := page.SetUserAgent(&override); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}

	if err := page.Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("waiting for %s to load: %w", pageURL, err)
	}

	r.logger.Debug("page rendered", "url", pageURL)
	return &liveSource{page: page, url: pageURL, logger: r.logger}, nil
}

// liveSource adapts an open browser tab to the detection source interface.
type liveSource struct {
	page   *rod.Page
	url    string
	logger *slog.Logger
}

var _ detect.Source = (*liveSource)(nil)

// Snapshot bakes current layout metrics into the live document, serializes
// it and parses the result. Each call observes the document as it is now.
func (s *liveSource) Snapshot(ctx context.Context) (*dom.Page, error) {
	page := s.page.Context(ctx)

	if _, err := page.Eval(bakeMetricsJS); err != nil {
		return nil, fmt.Errorf("baking layout metrics: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}

	return dom.Parse(strings.NewReader(html), s.url)
}

// Busy evaluates the page's own loading indicators.
func (s *liveSource) Busy(ctx context.Context) bool {
	res, err := s.page.Context(ctx).Eval(busyJS)
	if err != nil {
		s.logger.Debug("busy probe failed", "url", s.url, "err", err)
		return false
	}
	return res.Value.Bool()
}

// Close releases the tab.
func (s *liveSource) Close() error {
	return s.page.Close()
}
