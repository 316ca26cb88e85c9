package jsonbackend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopmirror/shopmirror/internal/storage"
)

func product(url, store string, favorite bool) *storage.Product {
	return &storage.Product{
		ID:         url + "-id",
		Name:       "Test Product",
		Price:      "$10.00",
		URL:        url,
		Store:      store,
		IsFavorite: favorite,
		SavedAt:    time.Now().UTC(),
		PriceHistory: []storage.PriceHistoryEntry{
			{Price: "$10.00", NumericPrice: 10, Timestamp: time.Now().UTC()},
		},
	}
}

func TestJSONBackend_SaveGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	b, err := New(path)
	if err != nil {
		t.Fatalf("creating backend: %v", err)
	}
	defer b.Close()
	ctx := context.Background()

	url := "https://shop.example.com/p/1"
	if err := b.Save(ctx, product(url, "Zara", false)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := b.Get(ctx, url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.URL != url || got.Store != "Zara" {
		t.Errorf("unexpected product: %+v", got)
	}

	if _, err := b.Get(ctx, "https://shop.example.com/missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := b.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Get(ctx, url); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := b.Delete(ctx, url); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestJSONBackend_SaveUpserts(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "products.json"))
	if err != nil {
		t.Fatalf("creating backend: %v", err)
	}
	ctx := context.Background()

	url := "https://shop.example.com/p/2"
	first := product(url, "Zara", false)
	if err := b.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := product(url, "Zara", true)
	second.Price = "$8.00"
	if err := b.Save(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	all, err := b.List(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected upsert to keep one product, got %d", len(all))
	}
	if all[0].Price != "$8.00" || !all[0].IsFavorite {
		t.Errorf("expected replaced product, got %+v", all[0])
	}
}

func TestJSONBackend_ListFilters(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "products.json"))
	if err != nil {
		t.Fatalf("creating backend: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store := "Uniqlo"
		if i%2 == 1 {
			store = "Zara"
		}
		p := product(fmt.Sprintf("https://shop.example.com/p/%d", i), store, i == 4)
		if err := b.Save(ctx, p); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	byStore, err := b.List(ctx, storage.Filter{Store: "Zara"})
	if err != nil {
		t.Fatalf("list by store: %v", err)
	}
	if len(byStore) != 2 {
		t.Errorf("expected 2 Zara products, got %d", len(byStore))
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
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
	// Newest first: offset 1 skips p/4.
	if page[0].URL != "https://shop.example.com/p/3" {
		t.Errorf("expected p/3 first on page, got %s", page[0].URL)
	}
}

func TestJSONBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	ctx := context.Background()

	b, err := New(path)
	if err != nil {
		t.Fatalf("creating backend: %v", err)
	}
	url := "https://shop.example.com/p/persist"
	if err := b.Save(ctx, product(url, "Nike", true)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopening backend: %v", err)
	}
	got, err := reopened.Get(ctx, url)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Store != "Nike" || !got.IsFavorite {
		t.Errorf("unexpected product after reopen: %+v", got)
	}
	if len(got.PriceHistory) != 1 {
		t.Errorf("expected history to survive reopen, got %d entries", len(got.PriceHistory))
	}
}
