package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopmirror/shopmirror/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	url TEXT PRIMARY KEY,
	store TEXT NOT NULL,
	is_favorite BOOLEAN NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL,
	doc JSONB NOT NULL
);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, product *storage.Product) error {
	doc, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encoding product: %w", err)
	}

	query := `
	INSERT INTO products (url, store, is_favorite, saved_at, doc)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (url) DO UPDATE SET
		store = EXCLUDED.store,
		is_favorite = EXCLUDED.is_favorite,
		doc = EXCLUDED.doc
	`

	_, err = b.pool.Exec(ctx, query,
		product.URL,
		product.Store,
		product.IsFavorite,
		product.SavedAt,
		doc,
	)
	if err != nil {
		return fmt.Errorf("saving product: %w", err)
	}

	return nil
}

func (b *postgresBackend) Get(ctx context.Context, url string) (*storage.Product, error) {
	var doc []byte
	err := b.pool.QueryRow(ctx, `SELECT doc FROM products WHERE url = $1`, url).Scan(&doc)
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	var p storage.Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	return &p, nil
}

func (b *postgresBackend) List(ctx context.Context, filter storage.Filter) ([]*storage.Product, error) {
	query := `SELECT doc FROM products WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Store != "" {
		query += fmt.Sprintf(` AND store = $%d`, paramCount)
		args = append(args, filter.Store)
		paramCount++
	}
	if filter.FavoritesOnly {
		query += ` AND is_favorite`
	}

	query += ` ORDER BY saved_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
		paramCount++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*storage.Product
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		var p storage.Product
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (b *postgresBackend) Delete(ctx context.Context, url string) error {
	tag, err := b.pool.Exec(ctx, `DELETE FROM products WHERE url = $1`, url)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
