package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
)

var (
	_ catalog.Repository[catalog.Category] = (*ResourceRepository[catalog.Category])(nil)
	_ catalog.Repository[catalog.Carrier]  = (*ResourceRepository[catalog.Carrier])(nil)
)

// ResourceRepository is the generic CRUD engine for name-keyed catalog
// resources. Categories and carriers share one schema shape (id, name), so
// one implementation serves both, parameterized by table and row mapper.
type ResourceRepository[T any] struct {
	pool  *pgxpool.Pool
	kind  string
	wrap  func(id, name string) T
	count string
	list  string
	all   string
	get   string
	ins   string
	upd   string
	del   string
}

// NewCategoryRepository returns the category repository.
func NewCategoryRepository(pool *pgxpool.Pool) *ResourceRepository[catalog.Category] {
	return newResourceRepository(pool, "categories", "category",
		func(id, name string) catalog.Category { return catalog.Category{ID: id, Name: name} })
}

// NewCarrierRepository returns the carrier repository.
func NewCarrierRepository(pool *pgxpool.Pool) *ResourceRepository[catalog.Carrier] {
	return newResourceRepository(pool, "carriers", "carrier",
		func(id, name string) catalog.Carrier { return catalog.Carrier{ID: id, Name: name} })
}

// newResourceRepository builds the per-table statements up front. The table
// name is a code constant, never caller input.
func newResourceRepository[T any](pool *pgxpool.Pool, table, kind string, wrap func(id, name string) T) *ResourceRepository[T] {
	return &ResourceRepository[T]{
		pool:  pool,
		kind:  kind,
		wrap:  wrap,
		count: fmt.Sprintf(`SELECT count(*) FROM %s`, table),
		list:  fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name LIMIT $1 OFFSET $2`, table),
		all:   fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, table),
		get:   fmt.Sprintf(`SELECT id, name FROM %s WHERE id = $1`, table),
		ins:   fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2) RETURNING id, name`, table),
		upd:   fmt.Sprintf(`UPDATE %s SET name = $2 WHERE id = $1 RETURNING id, name`, table),
		del:   fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table),
	}
}

// List returns one page ordered by name, with the exact total.
func (r *ResourceRepository[T]) List(ctx context.Context, page, pageSize int) (catalog.Page[T], error) {
	var total int
	if err := r.pool.QueryRow(ctx, r.count).Scan(&total); err != nil {
		return catalog.Page[T]{}, mapError(ctx, err, "count", r.kind, "")
	}

	rows, err := r.pool.Query(ctx, r.list, pageSize, catalog.Offset(page, pageSize))
	if err != nil {
		return catalog.Page[T]{}, mapError(ctx, err, "list", r.kind, "")
	}
	items, err := pgx.CollectRows(rows, r.scan)
	if err != nil {
		return catalog.Page[T]{}, mapError(ctx, err, "list", r.kind, "")
	}

	return catalog.NewPage(items, total, pageSize), nil
}

// GetAll returns every row ordered by name, for selection dropdowns.
func (r *ResourceRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := r.pool.Query(ctx, r.all)
	if err != nil {
		return nil, mapError(ctx, err, "list all", r.kind, "")
	}
	return pgx.CollectRows(rows, r.scan)
}

// GetByID returns a single row by id.
func (r *ResourceRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	rows, err := r.pool.Query(ctx, r.get, id)
	if err != nil {
		return nil, mapError(ctx, err, "get", r.kind, id)
	}
	item, err := pgx.CollectExactlyOneRow(rows, r.scan)
	if err != nil {
		return nil, mapError(ctx, err, "get", r.kind, id)
	}
	return &item, nil
}

// Create inserts a row with a freshly minted id and returns it.
func (r *ResourceRepository[T]) Create(ctx context.Context, name string) (*T, error) {
	rows, err := r.pool.Query(ctx, r.ins, uuid.New().String(), name)
	if err != nil {
		return nil, mapError(ctx, err, "create", r.kind, "")
	}
	item, err := pgx.CollectExactlyOneRow(rows, r.scan)
	if err != nil {
		return nil, mapError(ctx, err, "create", r.kind, "")
	}
	return &item, nil
}

// Update replaces the name unconditionally and returns the updated row.
func (r *ResourceRepository[T]) Update(ctx context.Context, id, name string) (*T, error) {
	rows, err := r.pool.Query(ctx, r.upd, id, name)
	if err != nil {
		return nil, mapError(ctx, err, "update", r.kind, id)
	}
	item, err := pgx.CollectExactlyOneRow(rows, r.scan)
	if err != nil {
		return nil, mapError(ctx, err, "update", r.kind, id)
	}
	return &item, nil
}

// Delete removes a row. Deleting a missing id surfaces ErrNotFound rather
// than silently succeeding.
func (r *ResourceRepository[T]) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, r.del, id)
	if err != nil {
		return mapError(ctx, err, "delete", r.kind, id)
	}
	if ct.RowsAffected() == 0 {
		return mapError(ctx, pgx.ErrNoRows, "delete", r.kind, id)
	}
	return nil
}

func (r *ResourceRepository[T]) scan(row pgx.CollectableRow) (T, error) {
	var id, name string
	err := row.Scan(&id, &name)
	return r.wrap(id, name), err
}
