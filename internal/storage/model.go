package storage

import "time"

// PriceHistoryEntry is one observed price for a tracked product. Entries are
// append-only and ordered by detection time; the last entry is current.
// Field names stay snake_case on the wire for the remote mirror translation.
type PriceHistoryEntry struct {
	Price        string    `json:"price"`
	Timestamp    time.Time `json:"timestamp"`
	NumericPrice float64   `json:"numeric_price"`
	IsSale       bool      `json:"is_sale"`
	Confidence   float64   `json:"confidence"`
	Method       string    `json:"method"`
	SaleReasons  []string  `json:"sale_reasons,omitempty"`
}

// Product is a persisted tracked product. URL is the natural key: no two
// products share a URL in a collection, enforced at write time.
type Product struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Price               string              `json:"price"`
	Currency            string              `json:"currency"`
	CurrencySymbol      string              `json:"currency_symbol"`
	Image               string              `json:"image"`
	Images              []string            `json:"images,omitempty"`
	URL                 string              `json:"url"`
	Store               string              `json:"store"`
	SavedAt             time.Time           `json:"saved_at"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
	PriceHistory        []PriceHistoryEntry `json:"price_history"`
	IsFavorite          bool                `json:"is_favorite"`
	Colors              []string            `json:"colors,omitempty"`
	Sizes               []string            `json:"sizes,omitempty"`
	Material            string              `json:"material,omitempty"`
	DetectionMethod     string              `json:"detection_method"`
	DetectionConfidence float64             `json:"detection_confidence"`
	LastChecked         *time.Time          `json:"last_checked,omitempty"`
}

// CurrentEntry returns the most recent price history entry, or nil for a
// product with no history.
func (p *Product) CurrentEntry() *PriceHistoryEntry {
	if len(p.PriceHistory) == 0 {
		return nil
	}
	return &p.PriceHistory[len(p.PriceHistory)-1]
}

// LowestPrice returns the lowest numeric price ever observed, or 0 when no
// entry carries a usable value.
func (p *Product) LowestPrice() float64 {
	lowest := 0.0
	for _, e := range p.PriceHistory {
		if e.NumericPrice <= 0 {
			continue
		}
		if lowest == 0 || e.NumericPrice < lowest {
			lowest = e.NumericPrice
		}
	}
	return lowest
}
