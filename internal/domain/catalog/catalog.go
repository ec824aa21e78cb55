// Package catalog holds the types and contracts shared by all catalog
// resources managed through the admin panel.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// Failure taxonomy for record-store and object-store operations. Every
// data-access error surfaces as (or wraps) one of these; none are retried.
var (
	// ErrNotFound is returned when a lookup by id matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when the record store rejects a write,
	// e.g. a referential-integrity or check-constraint violation.
	ErrConstraint = errors.New("record store rejected write")
	// ErrUpload is returned when the object store fails to persist an
	// uploaded image.
	ErrUpload = errors.New("image upload failed")
)

// Category groups products for navigation and filtering.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Carrier is a supplier delivering products to the store.
type Carrier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Page is one window of a paginated listing, together with the exact total
// across all pages. It is recomputed on every list call, never persisted.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage derives the page bookkeeping from an exact total. A zero total
// yields zero pages, so callers never divide by zero.
func NewPage[T any](items []T, total, pageSize int) Page[T] {
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{Items: items, Total: total, TotalPages: totalPages}
}

// Offset converts a one-based page number into a zero-based row offset.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// Repository is the CRUD contract shared by the name-keyed catalog resources
// (categories and carriers). Listings are ordered by name ascending.
type Repository[T any] interface {
	List(ctx context.Context, page, pageSize int) (Page[T], error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, name string) (*T, error)
	Update(ctx context.Context, id, name string) (*T, error)
	Delete(ctx context.Context, id string) error
}
