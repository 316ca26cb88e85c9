// Package tracker turns detection results into persisted products and keeps
// them fresh: Saver handles the upsert-by-URL workflow with price history
// append rules, Rechecker revisits the saved collection on a schedule.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/detect"
	"github.com/shopmirror/shopmirror/internal/metrics"
	"github.com/shopmirror/shopmirror/internal/storage"
)

// Save failures distinguish the two fields a product cannot exist without.
var (
	ErrNameNotFound  = errors.New("product name not detected")
	ErrPriceNotFound = errors.New("product price not detected")
)

// knownStores maps hostname fragments to display store names, checked in
// order so more specific fragments win. Hosts not listed fall back to the
// first label of the hostname.
var knownStores = []struct {
	fragment string
	name     string
}{
	{"bananarepublic", "Banana Republic"},
	{"oldnavy", "Old Navy"},
	{"uniqlo", "Uniqlo"},
	{"hm.com", "H&M"},
	{"zara", "Zara"},
	{"nike", "Nike"},
	{"adidas", "Adidas"},
	{"aritzia", "Aritzia"},
	{"jcrew", "J.Crew"},
	{"everlane", "Everlane"},
	{"forever21", "Forever 21"},
	{"reformation", "Reformation"},
	{"amazon", "Amazon"},
	{"gap.", "Gap"},
}

// StoreFromURL derives a display store name from a product page URL.
func StoreFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return "Unknown"
	}
	host := strings.ToLower(u.Hostname())
	for _, store := range knownStores {
		if strings.Contains(host, store.fragment) {
			return store.name
		}
	}

	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// Saver persists detection results through a storage backend.
type Saver struct {
	backend storage.Backend
	logger  *slog.Logger
	now     func() time.Time
}

// NewSaver creates a Saver writing through the given backend.
func NewSaver(backend storage.Backend, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Save upserts the detection result for pageURL. A first save creates the
// product with a single history entry; later saves append a new entry only
// when the observed price changed, and always refresh last_checked. The
// returned bool reports whether the product was newly created.
//
// Sentinel name or price values are the one hard failure in the pipeline:
// a product record without them is useless.
func (s *Saver) Save(ctx context.Context, pageURL string, r detect.Result) (*storage.Product, bool, error) {
	if r.Name == "" || r.Name == detect.NameNotFound {
		metrics.RecordSave("rejected")
		return nil, false, ErrNameNotFound
	}
	if r.Price == "" || r.Price == detect.PriceNotFound {
		metrics.RecordSave("rejected")
		return nil, false, ErrPriceNotFound
	}

	now := s.now().UTC()
	entry := historyEntry(r, now)

	existing, err := s.backend.Get(ctx, pageURL)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.RecordSave("error")
		return nil, false, fmt.Errorf("loading product for %s: %w", pageURL, err)
	}

	if existing == nil {
		product := &storage.Product{
			ID:                  uuid.NewString(),
			Name:                r.Name,
			Price:               r.Price,
			Currency:            string(r.Currency),
			CurrencySymbol:      strings.TrimSpace(currency.Lookup(r.Currency).Symbol),
			Images:              r.Images,
			URL:                 pageURL,
			Store:               StoreFromURL(pageURL),
			SavedAt:             now,
			PriceHistory:        []storage.PriceHistoryEntry{entry},
			DetectionMethod:     string(r.Method),
			DetectionConfidence: r.Confidence,
			LastChecked:         &now,
		}
		if len(r.Images) > 0 {
			product.Image = r.Images[0]
		}
		if err := s.backend.Save(ctx, product); err != nil {
			metrics.RecordSave("error")
			return nil, false, fmt.Errorf("saving product for %s: %w", pageURL, err)
		}
		s.logger.Info("product saved", "url", pageURL, "name", r.Name, "price", r.Price, "store", product.Store)
		metrics.RecordSave("created")
		return product, true, nil
	}

	existing.Name = r.Name
	existing.Price = r.Price
	existing.Currency = string(r.Currency)
	existing.CurrencySymbol = strings.TrimSpace(currency.Lookup(r.Currency).Symbol)
	if len(r.Images) > 0 {
		existing.Image = r.Images[0]
		existing.Images = r.Images
	}
	existing.DetectionMethod = string(r.Method)
	existing.DetectionConfidence = r.Confidence
	existing.UpdatedAt = &now
	existing.LastChecked = &now

	cur := existing.CurrentEntry()
	changed := cur == nil || cur.NumericPrice != entry.NumericPrice || cur.Price != entry.Price
	if changed {
		existing.PriceHistory = append(existing.PriceHistory, entry)
	}

	if err := s.backend.Save(ctx, existing); err != nil {
		metrics.RecordSave("error")
		return nil, false, fmt.Errorf("saving product for %s: %w", pageURL, err)
	}
	if changed {
		s.logger.Info("price changed", "url", pageURL,
			"previous", previousPrice(existing), "current", r.Price)
	} else {
		s.logger.Debug("price unchanged", "url", pageURL, "price", r.Price)
	}
	metrics.RecordSave("updated")
	return existing, false, nil
}

// SetFavorite flips the favorite flag on a saved product.
func (s *Saver) SetFavorite(ctx context.Context, pageURL string, favorite bool) error {
	product, err := s.backend.Get(ctx, pageURL)
	if err != nil {
		return err
	}
	product.IsFavorite = favorite
	now := s.now().UTC()
	product.UpdatedAt = &now
	return s.backend.Save(ctx, product)
}

func historyEntry(r detect.Result, ts time.Time) storage.PriceHistoryEntry {
	e := storage.PriceHistoryEntry{
		Price:        r.Price,
		Timestamp:    ts,
		NumericPrice: r.NumericPrice,
		Confidence:   r.Confidence,
		Method:       string(r.Method),
	}
	if r.Sale != nil && r.Sale.IsSale {
		e.IsSale = true
		e.SaleReasons = r.Sale.Reasons
	}
	return e
}

func previousPrice(p *storage.Product) string {
	if len(p.PriceHistory) < 2 {
		return ""
	}
	return p.PriceHistory[len(p.PriceHistory)-2].Price
}
