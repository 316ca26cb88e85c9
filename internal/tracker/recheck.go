package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/shopmirror/shopmirror/internal/detect"
	"github.com/shopmirror/shopmirror/internal/metrics"
	"github.com/shopmirror/shopmirror/internal/storage"
	"github.com/shopmirror/shopmirror/pkg/ratelimit"
)

// PageLoader produces a detection source for a product URL. The static
// fetcher and the headless renderer both satisfy it.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) (detect.Source, error)
}

// RecheckConfig tunes the scheduled recheck worker.
type RecheckConfig struct {
	// Schedule is a cron expression. Empty disables scheduling; RunOnce
	// can still be called directly.
	Schedule string
	// Concurrency bounds simultaneous page loads.
	Concurrency int
	// RPS throttles page loads across all workers. <= 0 disables.
	RPS float64
	// Jitter randomizes the throttle interval, 0.0 to 1.0.
	Jitter float64
	// Timeout bounds a single product recheck.
	Timeout time.Duration
}

// Rechecker revisits every saved product on a schedule, re-runs detection
// and feeds the result back through the Saver so price history accumulates.
type Rechecker struct {
	cfg      RecheckConfig
	backend  storage.Backend
	saver    *Saver
	detector *detect.Detector
	loader   PageLoader
	limiter  *ratelimit.Limiter
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewRechecker creates a recheck worker over the given backend and loader.
func NewRechecker(cfg RecheckConfig, backend storage.Backend, saver *Saver, detector *detect.Detector, loader PageLoader, logger *slog.Logger) *Rechecker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Rechecker{
		cfg:      cfg,
		backend:  backend,
		saver:    saver,
		detector: detector,
		loader:   loader,
		limiter:  ratelimit.NewLimiter(cfg.RPS, cfg.Jitter),
		logger:   logger,
	}
}

// Start begins scheduled rechecks. It returns immediately; runs happen on
// the cron goroutine.
func (r *Rechecker) Start() error {
	if r.cfg.Schedule == "" {
		return fmt.Errorf("no recheck schedule configured")
	}

	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.cfg.Schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("scheduled recheck failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering recheck schedule %q: %w", r.cfg.Schedule, err)
	}

	r.cron.Start()
	r.logger.Info("recheck schedule started", "schedule", r.cfg.Schedule)
	return nil
}

// Stop halts the schedule and releases the throttle. In-flight runs finish.
func (r *Rechecker) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.limiter.Stop()
}

// RunOnce rechecks every saved product. Individual product failures are
// logged and counted but do not abort the run.
func (r *Rechecker) RunOnce(ctx context.Context) error {
	products, err := r.backend.List(ctx, storage.Filter{})
	if err != nil {
		return fmt.Errorf("listing products for recheck: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	r.logger.Info("recheck run starting", "products", len(products))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, product := range products {
		g.Go(func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
			r.recheckOne(ctx, product)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("recheck run aborted: %w", err)
	}
	r.logger.Info("recheck run complete", "products", len(products), "elapsed", time.Since(start))
	return nil
}

func (r *Rechecker) recheckOne(ctx context.Context, product *storage.Product) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	src, err := r.loader.Load(ctx, product.URL)
	if err != nil {
		r.logger.Warn("recheck load failed", "url", product.URL, "err", err)
		metrics.RecordRecheck("load_error")
		return
	}

	result := r.detector.Detect(ctx, src)
	if !result.Found() {
		r.logger.Warn("recheck detection missed", "url", product.URL,
			"name", result.Name, "price", result.Price)
		metrics.RecordRecheck("not_found")
		return
	}

	if _, _, err := r.saver.Save(ctx, product.URL, result); err != nil {
		r.logger.Warn("recheck save failed", "url", product.URL, "err", err)
		metrics.RecordRecheck("save_error")
		return
	}
	metrics.RecordRecheck("ok")
}
