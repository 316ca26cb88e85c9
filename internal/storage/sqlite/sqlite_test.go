package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopmirror/shopmirror/internal/storage"
)

func testBackend(t *testing.T) storage.Backend {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "products.db"))
	if err != nil {
		t.Fatalf("creating backend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func product(url string, saved time.Time) *storage.Product {
	return &storage.Product{
		ID:      url + "-id",
		Name:    "Test Product",
		Price:   "$10.00",
		URL:     url,
		Store:   "Uniqlo",
		SavedAt: saved,
		PriceHistory: []storage.PriceHistoryEntry{
			{Price: "$10.00", NumericPrice: 10, Timestamp: saved},
		},
	}
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()

	url := "https://shop.example.com/p/1"
	now := time.Now().UTC().Truncate(time.Second)
	if err := b.Save(ctx, product(url, now)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := b.Get(ctx, url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Test Product" || got.Store != "Uniqlo" {
		t.Errorf("unexpected product: %+v", got)
	}
	if len(got.PriceHistory) != 1 || got.PriceHistory[0].NumericPrice != 10 {
		t.Errorf("expected history to round-trip, got %+v", got.PriceHistory)
	}

	if _, err := b.Get(ctx, "https://shop.example.com/missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteBackend_Upsert(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()

	url := "https://shop.example.com/p/2"
	now := time.Now().UTC()
	if err := b.Save(ctx, product(url, now)); err != nil {
		t.Fatalf("save: %v", err)
	}

	updated := product(url, now)
	updated.Price = "$8.00"
	updated.IsFavorite = true
	if err := b.Save(ctx, updated); err != nil {
		t.Fatalf("resave: %v", err)
	}

	all, err := b.List(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one product after upsert, got %d", len(all))
	}
	if all[0].Price != "$8.00" || !all[0].IsFavorite {
		t.Errorf("expected updated product, got %+v", all[0])
	}
}

func TestSQLiteBackend_ListOrderAndFilters(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		p := product(fmt.Sprintf("https://shop.example.com/p/%d", i), base.Add(time.Duration(i)*time.Minute))
		if i == 3 {
			p.Store = "Zara"
			p.IsFavorite = true
		}
		if err := b.Save(ctx, p); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, err := b.List(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 products, got %d", len(all))
	}
	if all[0].URL != "https://shop.example.com/p/3" {
		t.Errorf("expected newest first, got %s", all[0].URL)
	}

	zara, err := b.List(ctx, storage.Filter{Store: "Zara"})
	if err != nil {
		t.Fatalf("list by store: %v", err)
	}
	if len(zara) != 1 {
		t.Errorf("expected 1 Zara product, got %d", len(zara))
	}

	favorites, err := b.List(ctx, storage.Filter{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 {
		t.Errorf("expected 1 favorite, got %d", len(favorites))
	}

	page, err := b.List(ctx, storage.Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 || page[0].URL != "https://shop.example.com/p/2" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestSQLiteBackend_Delete(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()

	url := "https://shop.example.com/p/del"
	if err := b.Save(ctx, product(url, time.Now().UTC())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Delete(ctx, url); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
