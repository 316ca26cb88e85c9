// Package jsonbackend stores the product collection as a single JSON file,
// the closest server-side analogue of the browser-local key-value store the
// tracked collection originally lived in.
package jsonbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shopmirror/shopmirror/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu       sync.Mutex
	path     string
	products []*storage.Product
}

// New creates a JSON-file-backed storage.Backend. A missing file starts an
// empty collection.
func New(path string) (storage.Backend, error) {
	b := &jsonBackend{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading product collection: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &b.products); err != nil {
			return nil, fmt.Errorf("decoding product collection: %w", err)
		}
	}

	return b, nil
}

func (b *jsonBackend) Save(ctx context.Context, product *storage.Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	replaced := false
	for i, p := range b.products {
		if p.URL == product.URL {
			b.products[i] = product
			replaced = true
			break
		}
	}
	if !replaced {
		b.products = append(b.products, product)
	}

	return b.flushLocked()
}

func (b *jsonBackend) Get(ctx context.Context, url string) (*storage.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.products {
		if p.URL == url {
			clone := *p
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (b *jsonBackend) List(ctx context.Context, filter storage.Filter) ([]*storage.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*storage.Product
	for _, p := range b.products {
		if filter.Store != "" && p.Store != filter.Store {
			continue
		}
		if filter.FavoritesOnly && !p.IsFavorite {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}

	// Newest first, matching the database backends.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*storage.Product{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (b *jsonBackend) Delete(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.products {
		if p.URL == url {
			b.products = append(b.products[:i], b.products[i+1:]...)
			return b.flushLocked()
		}
	}
	return storage.ErrNotFound
}

func (b *jsonBackend) Close() error {
	return nil
}

func (b *jsonBackend) flushLocked() error {
	data, err := json.MarshalIndent(b.products, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding product collection: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("writing product collection: %w", err)
	}
	return nil
}
