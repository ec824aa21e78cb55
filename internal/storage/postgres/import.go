package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/go-faster/errors"
)

const (
	findCategoryByNameSQL = `SELECT id FROM categories WHERE name = $1 ORDER BY id LIMIT 1`

	insertCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2) RETURNING id`

	upsertProductSQL = `INSERT INTO products (id, title, description, price, category_id, image_url, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_ref) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id,
			image_url = EXCLUDED.image_url`
)

// ImportRow is one product row parsed from a supplier feed.
type ImportRow struct {
	Ref         string          `json:"ref"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// Importer provides the write path for bulk supplier-feed imports: category
// resolution by name and idempotent product upserts keyed by external ref.
type Importer struct {
	pool *pgxpool.Pool

	// categories caches name → id within one import run. The importer is
	// driven by a single writer goroutine, so no locking is needed.
	categories map[string]string
}

// NewImporter returns an Importer that uses the given pool.
func NewImporter(pool *pgxpool.Pool) *Importer {
	return &Importer{pool: pool, categories: make(map[string]string)}
}

// EnsureCategory returns the id of the category with the given name,
// creating it when absent.
func (im *Importer) EnsureCategory(ctx context.Context, name string) (string, error) {
	if id, ok := im.categories[name]; ok {
		return id, nil
	}

	var id string
	err := im.pool.QueryRow(ctx, findCategoryByNameSQL, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = im.pool.QueryRow(ctx, insertCategorySQL, uuid.New().String(), name).Scan(&id)
	}
	if err != nil {
		return "", errors.Wrapf(err, "ensure category %q", name)
	}

	im.categories[name] = id
	return id, nil
}

// Upsert inserts or refreshes a product keyed by its external ref.
func (im *Importer) Upsert(ctx context.Context, row ImportRow, categoryID string) error {
	_, err := im.pool.Exec(ctx, upsertProductSQL,
		uuid.New().String(), row.Title, row.Description, row.Price,
		categoryID, textOrNil(row.ImageURL), row.Ref,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", row.Ref)
	}
	return nil
}
