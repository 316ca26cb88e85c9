package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopmirror/shopmirror/internal/storage"
)

func sampleProducts() []*storage.Product {
	day := 24 * time.Hour
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	return []*storage.Product{
		{
			URL: "https://shop.example.com/p/1", Store: "Uniqlo",
			SavedAt: base, DetectionMethod: "structured-data",
			PriceHistory: []storage.PriceHistoryEntry{
				{NumericPrice: 80},
				{NumericPrice: 60, IsSale: true},
			},
		},
		{
			URL: "https://shop.example.com/p/2", Store: "Uniqlo", IsFavorite: true,
			SavedAt: base.Add(day), DetectionMethod: "focused-semantic",
			PriceHistory: []storage.PriceHistoryEntry{
				{NumericPrice: 40},
			},
		},
		{
			URL: "https://shop.example.com/p/3", Store: "Zara",
			SavedAt: base.Add(2 * day), DetectionMethod: "focused-semantic",
			PriceHistory: []storage.PriceHistoryEntry{
				{NumericPrice: 25},
				{NumericPrice: 30},
			},
		},
	}
}

func TestGenerateSummary(t *testing.T) {
	s := GenerateSummary(sampleProducts())

	if s.TotalProducts != 3 {
		t.Errorf("expected 3 products, got %d", s.TotalProducts)
	}
	if s.Favorites != 1 {
		t.Errorf("expected 1 favorite, got %d", s.Favorites)
	}
	if s.OnSale != 1 {
		t.Errorf("expected 1 on sale, got %d", s.OnSale)
	}
	if s.PriceDrops != 1 {
		t.Errorf("expected 1 price drop, got %d", s.PriceDrops)
	}
	if s.ByStore["Uniqlo"] != 2 || s.ByStore["Zara"] != 1 {
		t.Errorf("unexpected store counts: %v", s.ByStore)
	}
	if s.ByMethod["focused-semantic"] != 2 {
		t.Errorf("unexpected method counts: %v", s.ByMethod)
	}
	if !s.NewestSave.After(s.OldestSave) {
		t.Errorf("expected save range, got %v to %v", s.OldestSave, s.NewestSave)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	s := GenerateSummary(nil)
	if s.TotalProducts != 0 || s.PriceDrops != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, GenerateSummary(sampleProducts())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalProducts != 3 {
		t.Errorf("expected 3 products after round trip, got %d", decoded.TotalProducts)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, GenerateSummary(sampleProducts())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Products:     3", "Uniqlo: 2", "Zara: 1", "Price drops:  1"} {
		if !strings.Contains(out, want) {
			t.Errorf("text summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, GenerateSummary(sampleProducts())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<td>Uniqlo</td><td>2</td>") {
		t.Errorf("html summary missing store row:\n%s", out)
	}
}
