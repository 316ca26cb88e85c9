// Package storage defines the persisted product model and the backend
// interface the tracking workflow writes through.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no product exists for a URL.
var ErrNotFound = errors.New("product not found")

// Filter allows querying for specific products.
type Filter struct {
	Store         string
	FavoritesOnly bool
	Limit         int
	Offset        int
}

// Backend defines the interface for storing and querying tracked products.
// Save upserts by URL.
type Backend interface {
	Save(ctx context.Context, product *Product) error
	Get(ctx context.Context, url string) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Delete(ctx context.Context, url string) error
	Close() error
}
