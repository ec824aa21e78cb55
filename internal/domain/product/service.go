package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
)

// Service sequences product operations across the record store and the
// object store, and normalizes every returned record's image reference.
//
// Image upload and record write form a two-phase sequence with no
// compensation: when the upload succeeds but the record write fails, the
// stored object is orphaned. Accepted limitation.
type Service struct {
	repo    Repository
	store   ObjectStore
	resolve Resolver
}

// NewService creates a product Service over the given stores.
func NewService(repo Repository, store ObjectStore) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		resolve: NewResolver(store),
	}
}

// List returns one page of products ordered by title, images resolved.
func (s *Service) List(ctx context.Context, page, pageSize int) (catalog.Page[Product], error) {
	result, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return catalog.Page[Product]{}, err
	}
	for i := range result.Items {
		result.Items[i].ImageURL = s.resolve.Resolve(result.Items[i].ImageURL)
	}
	return result, nil
}

// Get returns a single product by id, image resolved.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ImageURL = s.resolve.Resolve(p.ImageURL)
	return p, nil
}

// Create uploads the image file when one is given (otherwise the supplied
// external URL is stored verbatim, possibly empty), inserts the record, and
// returns it with the image resolved.
func (s *Service) Create(ctx context.Context, in CreateParams) (*Product, error) {
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	imageRef := in.ImageURL
	if in.ImageFile != nil {
		key, err := s.uploadImage(ctx, in.ImageFile)
		if err != nil {
			return nil, err
		}
		imageRef = key
	}

	created, err := s.repo.Insert(ctx, &Product{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    imageRef,
	})
	if err != nil {
		return nil, err
	}
	created.ImageURL = s.resolve.Resolve(created.ImageURL)
	return created, nil
}

// Update composes the partial-update record and applies it. The image column
// is touched only when the caller supplied a file or an explicit URL value;
// omitting both leaves the stored reference untouched.
func (s *Service) Update(ctx context.Context, id string, in UpdateParams) (*Product, error) {
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	patch, err := s.composeImage(ctx, in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, UpdateRecord{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Image:       patch,
	})
	if err != nil {
		return nil, err
	}
	updated.ImageURL = s.resolve.Resolve(updated.ImageURL)
	return updated, nil
}

// Delete removes the product record. Referencing rows and stored objects are
// not touched; referential consequences belong to the record store.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// composeImage maps the caller's image intent onto the update patch: a file
// wins and becomes a freshly stored key; otherwise the caller's URL patch
// passes through (unchanged, clear, or set).
func (s *Service) composeImage(ctx context.Context, in UpdateParams) (ImagePatch, error) {
	if in.ImageFile == nil {
		return in.ImageURL, nil
	}
	key, err := s.uploadImage(ctx, in.ImageFile)
	if err != nil {
		return ImageUnchanged(), err
	}
	return ImageSet(key), nil
}

func (s *Service) uploadImage(ctx context.Context, f *Upload) (string, error) {
	key := objectKey(f.Filename)
	stored, err := s.store.Upload(ctx, key, f.Data, f.Size, f.ContentType)
	if err != nil {
		zctx.From(ctx).Error("image upload failed",
			zap.String("key", key),
			zap.String("filename", f.Filename),
			zap.Error(err),
		)
		return "", errors.Wrap(catalog.ErrUpload, err.Error())
	}
	return stored, nil
}

