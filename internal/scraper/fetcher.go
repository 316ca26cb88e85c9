// Package scraper fetches product pages over plain HTTP and hands them to
// the detection engine as parsed snapshots. Pages that render their content
// client-side need the headless renderer instead.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopmirror/shopmirror/internal/detect"
	"github.com/shopmirror/shopmirror/internal/dom"
	"github.com/shopmirror/shopmirror/internal/fingerprint"
	"github.com/shopmirror/shopmirror/pkg/httpclient"
	"github.com/shopmirror/shopmirror/pkg/proxy"
	"github.com/shopmirror/shopmirror/pkg/ratelimit"
	"github.com/shopmirror/shopmirror/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// maxBodySize caps how much of a product page we are willing to read.
const maxBodySize = 10 << 20

// Config configures a Fetcher.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
}

// Fetcher loads product pages. One client is held across requests so
// cookies and pooled connections persist for the Fetcher's lifetime.
type Fetcher struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.Chrome
	}

	// Per-request proxy rotation rides on the request context: the shared
	// transport's proxy func reads the URL planted there, so the transport
	// itself never changes after construction.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("building transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return &Fetcher{cfg: cfg, client: client, logger: logger}, nil
}

// Fetch GETs pageURL and parses the response into a page snapshot.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*dom.Page, error) {
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var activeProxy *url.URL
	if f.cfg.ProxyPool != nil {
		activeProxy = f.cfg.ProxyPool.Next()
	}
	if activeProxy != nil {
		ctx = context.WithValue(ctx, proxyKey, activeProxy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		if f.cfg.ProxyPool != nil {
			f.cfg.ProxyPool.Report(activeProxy, false)
		}
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if f.cfg.ProxyPool != nil {
		f.cfg.ProxyPool.Report(activeProxy, true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("fetching %s: not an HTML page (%s)", pageURL, ct)
	}

	page, err := dom.Parse(io.LimitReader(resp.Body, maxBodySize), pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	f.logger.Debug("page fetched", "url", pageURL, "status", resp.StatusCode, "elapsed", time.Since(start))
	return page, nil
}

// Load fetches pageURL and wraps it as a static detection source.
func (f *Fetcher) Load(ctx context.Context, pageURL string) (detect.Source, error) {
	page, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return detect.NewStaticSource(page), nil
}
