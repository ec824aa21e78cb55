// Package product implements the catalog's product data-access logic: CRUD
// with pagination, dual-mode image references (external URL or stored object
// key), and conditional image semantics on partial updates.
package product

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
)

// ErrInvalidPrice is returned when a create or update carries a non-positive price.
var ErrInvalidPrice = errors.New("price must be greater than zero")

// Product is a catalog item as seen by callers: the image reference is always
// resolved to a directly fetchable URL, never a raw storage key.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Upload is an image file submitted through the admin form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// CreateParams holds the full field set for a new product. When ImageFile is
// set it takes priority over ImageURL, mirroring the admin form behaviour.
type CreateParams struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	ImageFile   *Upload
	ImageURL    string
}

// UpdateParams holds the field set for an update. The image carries explicit
// intent: a file replaces the reference with a freshly stored key, the URL
// patch distinguishes "leave unchanged" from "replace" from "clear".
type UpdateParams struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	ImageFile   *Upload
	ImageURL    ImagePatch
}

// UpdateRecord is the column set sent to the record store on update. The
// image column participates only when Image.Include() reports true.
type UpdateRecord struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Image       ImagePatch
}

// Repository defines the record-store operations for products. List rows are
// ordered by title and joined to the related category's name; a missing join
// yields an empty Category, never an error.
type Repository interface {
	List(ctx context.Context, page, pageSize int) (catalog.Page[Product], error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Insert(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id string, rec UpdateRecord) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore is the blob-storage collaborator holding uploaded product
// images in a single fixed bucket.
type ObjectStore interface {
	// Upload stores the blob under key and returns the key actually stored.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// PublicURL derives a publicly fetchable URL for a stored key.
	PublicURL(key string) string
}
