// Package report aggregates a tracked-product collection into a summary and
// renders it as JSON, text or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	texttemplate "text/template"
	"time"

	"github.com/shopmirror/shopmirror/internal/storage"
)

// Summary aggregates the state of a product collection.
type Summary struct {
	TotalProducts int
	Favorites     int
	OnSale        int
	PriceDrops    int
	ByStore       map[string]int
	ByMethod      map[string]int
	OldestSave    time.Time
	NewestSave    time.Time
}

// GenerateSummary computes collection-wide numbers. A price drop means the
// latest observed price is below the first one ever recorded.
func GenerateSummary(products []*storage.Product) Summary {
	s := Summary{
		ByStore:  make(map[string]int),
		ByMethod: make(map[string]int),
	}
	if len(products) == 0 {
		return s
	}

	s.OldestSave = products[0].SavedAt
	s.NewestSave = products[0].SavedAt

	for _, p := range products {
		s.TotalProducts++
		s.ByStore[p.Store]++
		s.ByMethod[p.DetectionMethod]++
		if p.IsFavorite {
			s.Favorites++
		}

		cur := p.CurrentEntry()
		if cur != nil && cur.IsSale {
			s.OnSale++
		}
		if cur != nil && len(p.PriceHistory) > 1 {
			first := p.PriceHistory[0]
			if first.NumericPrice > 0 && cur.NumericPrice > 0 && cur.NumericPrice < first.NumericPrice {
				s.PriceDrops++
			}
		}

		if p.SavedAt.Before(s.OldestSave) {
			s.OldestSave = p.SavedAt
		}
		if p.SavedAt.After(s.NewestSave) {
			s.NewestSave = p.SavedAt
		}
	}

	return s
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable summary.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Collection Summary
------------------
Saved:        {{.OldestSave.Format "2006-01-02"}} - {{.NewestSave.Format "2006-01-02"}}
Products:     {{.TotalProducts}}
Favorites:    {{.Favorites}}
On sale:      {{.OnSale}}
Price drops:  {{.PriceDrops}}

Stores:
{{- range $store, $count := .ByStore}}
  {{$store}}: {{$count}}
{{- else}}
  None
{{- end}}

Detection methods:
{{- range $method, $count := .ByMethod}}
  {{$method}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := texttemplate.New("textSummary").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parsing text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering text summary: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML rendering of the summary.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Collection Summary</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 140px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
</style>
</head>
<body>
  <h1>Collection Summary</h1>
  <p><strong>Saved:</strong> {{.OldestSave.Format "2006-01-02"}} to {{.NewestSave.Format "2006-01-02"}}</p>

  <div class="stat"><div>Products</div><div class="stat-val">{{.TotalProducts}}</div></div>
  <div class="stat"><div>Favorites</div><div class="stat-val">{{.Favorites}}</div></div>
  <div class="stat"><div>On Sale</div><div class="stat-val">{{.OnSale}}</div></div>
  <div class="stat"><div>Price Drops</div><div class="stat-val">{{.PriceDrops}}</div></div>

  <h3>Stores</h3>
  <table>
    <tr><th>Store</th><th>Products</th></tr>
    {{- range $store, $count := .ByStore}}
    <tr><td>{{$store}}</td><td>{{$count}}</td></tr>
    {{- end}}
  </table>
</body>
</html>
`

	t, err := template.New("htmlSummary").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parsing html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering html summary: %w", err)
	}
	return nil
}
