// Package metrics exposes Prometheus instrumentation for detection runs and
// the tracking workflow, plus an optional /metrics HTTP server.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmirror_detections_total",
			Help: "Total number of detection runs executed",
		},
		[]string{"method", "found", "sale"},
	)

	DetectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopmirror_detection_duration_seconds",
			Help:    "Duration of detection runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 5},
		},
		[]string{"method"},
	)

	FieldMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmirror_field_misses_total",
			Help: "Detection runs that degraded to a sentinel for a field",
		},
		[]string{"field"},
	)

	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmirror_saves_total",
			Help: "Product save attempts by outcome",
		},
		[]string{"outcome"},
	)

	RechecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmirror_rechecks_total",
			Help: "Scheduled price rechecks by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordDetection updates the detection counters and duration histogram.
func RecordDetection(method string, found, sale bool, dur time.Duration) {
	DetectionsTotal.WithLabelValues(method, strconv.FormatBool(found), strconv.FormatBool(sale)).Inc()
	DetectionDuration.WithLabelValues(method).Observe(dur.Seconds())
}

// RecordFieldMiss counts a sentinel-valued field in a detection result.
func RecordFieldMiss(field string) {
	FieldMissesTotal.WithLabelValues(field).Inc()
}

// RecordSave counts a save-workflow outcome: "created", "updated",
// "rejected" or "error".
func RecordSave(outcome string) {
	SavesTotal.WithLabelValues(outcome).Inc()
}

// RecordRecheck counts a per-product recheck outcome: "ok", "load_error",
// "not_found" or "save_error".
func RecordRecheck(outcome string) {
	RechecksTotal.WithLabelValues(outcome).Inc()
}

// Server serves the Prometheus /metrics endpoint in the background.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// Start listens on the given port and serves /metrics until stopped.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s := &Server{
		srv:    &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux},
		logger: logger,
	}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return s
}

// Stop shuts down the metrics server, waiting up to five seconds for
// in-flight scrapes.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
