// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting. All values come from SHOPMIRROR_*
// environment variables; unset values get defaults.
type Config struct {
	// Backend selects persistence: "json", "sqlite" or "postgres".
	Backend string
	// JSONPath is the collection file for the json backend.
	JSONPath string
	// SQLiteDSN is the database path for the sqlite backend.
	SQLiteDSN string
	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// RecheckSchedule is a cron expression; empty disables rechecks.
	RecheckSchedule string
	// RecheckConcurrency bounds simultaneous page loads per run.
	RecheckConcurrency int
	// FetchRPS throttles outbound page loads.
	FetchRPS float64
	// FetchTimeout bounds a single page fetch.
	FetchTimeout time.Duration

	// Fingerprint names the TLS ClientHello profile for static fetches.
	Fingerprint string
	// Proxies lists proxy URLs, comma separated.
	Proxies []string

	// UseRenderer routes page loads through the headless browser.
	UseRenderer bool
	// BrowserURL attaches to a running browser instead of launching one.
	BrowserURL string

	// MetricsPort serves Prometheus metrics when > 0.
	MetricsPort int
}

// Load reads the environment, consulting a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend:            getEnv("SHOPMIRROR_BACKEND", "json"),
		JSONPath:           getEnv("SHOPMIRROR_JSON_PATH", "products.json"),
		SQLiteDSN:          getEnv("SHOPMIRROR_SQLITE_DSN", "products.db"),
		PostgresDSN:        os.Getenv("SHOPMIRROR_POSTGRES_DSN"),
		RecheckSchedule:    getEnv("SHOPMIRROR_RECHECK_SCHEDULE", "0 */6 * * *"),
		Fingerprint:        getEnv("SHOPMIRROR_FINGERPRINT", "chrome"),
		BrowserURL:         os.Getenv("SHOPMIRROR_BROWSER_URL"),
		UseRenderer:        getEnv("SHOPMIRROR_USE_RENDERER", "false") == "true",
		RecheckConcurrency: 4,
		FetchRPS:           1,
		FetchTimeout:       30 * time.Second,
		MetricsPort:        0,
	}

	if v := os.Getenv("SHOPMIRROR_PROXIES"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Proxies = append(cfg.Proxies, p)
			}
		}
	}

	var err error
	if cfg.RecheckConcurrency, err = intEnv("SHOPMIRROR_RECHECK_CONCURRENCY", cfg.RecheckConcurrency); err != nil {
		return nil, err
	}
	if cfg.MetricsPort, err = intEnv("SHOPMIRROR_METRICS_PORT", cfg.MetricsPort); err != nil {
		return nil, err
	}
	if v := os.Getenv("SHOPMIRROR_FETCH_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing SHOPMIRROR_FETCH_RPS: %w", err)
		}
		cfg.FetchRPS = rps
	}
	if v := os.Getenv("SHOPMIRROR_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing SHOPMIRROR_FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = d
	}

	switch cfg.Backend {
	case "json", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Backend == "postgres" && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres backend requires SHOPMIRROR_POSTGRES_DSN")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
