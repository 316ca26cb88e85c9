package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopmirror/shopmirror/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

// Filterable columns are materialized; the rest of the product, including
// the nested price history, lives in the doc column.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	url TEXT PRIMARY KEY,
	store TEXT NOT NULL,
	is_favorite BOOLEAN NOT NULL,
	saved_at DATETIME NOT NULL,
	doc TEXT NOT NULL
);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, product *storage.Product) error {
	doc, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encoding product: %w", err)
	}

	query := `
	INSERT INTO products (url, store, is_favorite, saved_at, doc)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		store = excluded.store,
		is_favorite = excluded.is_favorite,
		doc = excluded.doc
	`

	_, err = b.db.ExecContext(ctx, query,
		product.URL,
		product.Store,
		product.IsFavorite,
		product.SavedAt.UTC().Format(time.RFC3339Nano),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving product: %w", err)
	}

	return nil
}

func (b *sqliteBackend) Get(ctx context.Context, url string) (*storage.Product, error) {
	var doc string
	err := b.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE url = ?`, url).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	var p storage.Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	return &p, nil
}

func (b *sqliteBackend) List(ctx context.Context, filter storage.Filter) ([]*storage.Product, error) {
	query := `SELECT doc FROM products WHERE 1=1`
	args := []any{}

	if filter.Store != "" {
		query += ` AND store = ?`
		args = append(args, filter.Store)
	}
	if filter.FavoritesOnly {
		query += ` AND is_favorite = 1`
	}

	query += ` ORDER BY saved_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*storage.Product
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		var p storage.Product
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (b *sqliteBackend) Delete(ctx context.Context, url string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM products WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
