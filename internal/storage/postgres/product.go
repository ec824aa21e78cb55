package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
	"github.com/vailshop/catalog-admin/internal/domain/product"
)

const (
	countProductsSQL = `SELECT count(*) FROM products`

	listProductsSQL = `SELECT p.id, p.title, p.description, p.price, p.category_id,
			COALESCE(c.name, ''), COALESCE(p.image_url, '')
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.title LIMIT $1 OFFSET $2`

	getProductSQL = `SELECT p.id, p.title, p.description, p.price, p.category_id,
			COALESCE(c.name, ''), COALESCE(p.image_url, '')
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	insertProductSQL = `INSERT INTO products (id, title, description, price, category_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, price, category_id, '', COALESCE(image_url, '')`

	updateProductSQL = `UPDATE products
		SET title = $2, description = $3, price = $4, category_id = $5
		WHERE id = $1
		RETURNING id, title, description, price, category_id, '', COALESCE(image_url, '')`

	updateProductImageSQL = `UPDATE products
		SET title = $2, description = $3, price = $4, category_id = $5, image_url = $6
		WHERE id = $1
		RETURNING id, title, description, price, category_id, '', COALESCE(image_url, '')`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Stored image references pass through untouched; resolution to fetchable
// URLs happens in the product service.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one page of products ordered by title, each joined to its
// category's name, plus the exact total.
func (r *ProductRepository) List(ctx context.Context, page, pageSize int) (catalog.Page[product.Product], error) {
	var total int
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&total); err != nil {
		return catalog.Page[product.Product]{}, mapError(ctx, err, "count", "product", "")
	}

	rows, err := r.pool.Query(ctx, listProductsSQL, pageSize, catalog.Offset(page, pageSize))
	if err != nil {
		return catalog.Page[product.Product]{}, mapError(ctx, err, "list", "product", "")
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return catalog.Page[product.Product]{}, mapError(ctx, err, "list", "product", "")
	}

	return catalog.NewPage(items, total, pageSize), nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, mapError(ctx, err, "get", "product", id)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, mapError(ctx, err, "get", "product", id)
	}
	return &p, nil
}

// Insert persists a full product record and returns the stored row. The
// returned row carries no joined category name.
func (r *ProductRepository) Insert(ctx context.Context, p *product.Product) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, insertProductSQL,
		p.ID, p.Title, p.Description, p.Price, p.CategoryID, textOrNil(p.ImageURL),
	)
	if err != nil {
		return nil, mapError(ctx, err, "create", "product", "")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, mapError(ctx, err, "create", "product", "")
	}
	return &created, nil
}

// Update applies a partial update. The image column is written only when the
// patch includes it; an empty patch value stores NULL.
func (r *ProductRepository) Update(ctx context.Context, id string, rec product.UpdateRecord) (*product.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if rec.Image.Include() {
		rows, err = r.pool.Query(ctx, updateProductImageSQL,
			id, rec.Title, rec.Description, rec.Price, rec.CategoryID, textOrNil(rec.Image.Value()),
		)
	} else {
		rows, err = r.pool.Query(ctx, updateProductSQL,
			id, rec.Title, rec.Description, rec.Price, rec.CategoryID,
		)
	}
	if err != nil {
		return nil, mapError(ctx, err, "update", "product", id)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, mapError(ctx, err, "update", "product", id)
	}
	return &updated, nil
}

// Delete removes a product. Deleting a missing id surfaces ErrNotFound.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return mapError(ctx, err, "delete", "product", id)
	}
	if ct.RowsAffected() == 0 {
		return mapError(ctx, pgx.ErrNoRows, "delete", "product", id)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.CategoryID, &p.Category, &p.ImageURL)
	p.Price = price
	return p, err
}

// textOrNil maps the domain's empty-string "no image" to a NULL column.
func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
