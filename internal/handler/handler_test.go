package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
	"github.com/vailshop/catalog-admin/internal/domain/product"
)

// --- Mock implementations ---

type stubResourceRepo struct {
	page     catalog.Page[catalog.Category]
	all      []catalog.Category
	byID     map[string]catalog.Category
	err      error
	lastPage int
	lastSize int
	created  string
}

func (s *stubResourceRepo) List(_ context.Context, page, pageSize int) (catalog.Page[catalog.Category], error) {
	s.lastPage, s.lastSize = page, pageSize
	return s.page, s.err
}

func (s *stubResourceRepo) GetAll(_ context.Context) ([]catalog.Category, error) {
	return s.all, s.err
}

func (s *stubResourceRepo) GetByID(_ context.Context, id string) (*catalog.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &c, nil
}

func (s *stubResourceRepo) Create(_ context.Context, name string) (*catalog.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = name
	return &catalog.Category{ID: "new", Name: name}, nil
}

func (s *stubResourceRepo) Update(_ context.Context, id, name string) (*catalog.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Category{ID: id, Name: name}, nil
}

func (s *stubResourceRepo) Delete(_ context.Context, id string) error {
	return s.err
}

type stubProductService struct {
	page       catalog.Page[product.Product]
	byID       map[string]product.Product
	err        error
	lastCreate product.CreateParams
	lastID     string
	lastUpdate product.UpdateParams
}

func (s *stubProductService) List(_ context.Context, page, pageSize int) (catalog.Page[product.Product], error) {
	return s.page, s.err
}

func (s *stubProductService) Get(_ context.Context, id string) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductService) Create(_ context.Context, in product.CreateParams) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastCreate = in
	return &product.Product{ID: "new", Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Update(_ context.Context, id string, in product.UpdateParams) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastID, s.lastUpdate = id, in
	return &product.Product{ID: id, Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Delete(_ context.Context, id string) error {
	return s.err
}

// --- Helpers ---

func newTestHandler(categories *stubResourceRepo, products *stubProductService) http.Handler {
	if categories == nil {
		categories = &stubResourceRepo{}
	}
	if products == nil {
		products = &stubProductService{}
	}
	carriers := &stubCarrierRepo{}
	return New(categories, carriers, products).Routes()
}

// stubCarrierRepo satisfies catalog.Repository[catalog.Carrier] minimally.
type stubCarrierRepo struct{}

func (stubCarrierRepo) List(context.Context, int, int) (catalog.Page[catalog.Carrier], error) {
	return catalog.Page[catalog.Carrier]{}, nil
}
func (stubCarrierRepo) GetAll(context.Context) ([]catalog.Carrier, error)      { return nil, nil }
func (stubCarrierRepo) GetByID(context.Context, string) (*catalog.Carrier, error) {
	return nil, catalog.ErrNotFound
}
func (stubCarrierRepo) Create(context.Context, string) (*catalog.Carrier, error) {
	return nil, catalog.ErrNotFound
}
func (stubCarrierRepo) Update(context.Context, string, string) (*catalog.Carrier, error) {
	return nil, catalog.ErrNotFound
}
func (stubCarrierRepo) Delete(context.Context, string) error { return catalog.ErrNotFound }

func productFormBody(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image_file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, "fake image bytes")
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// --- Tests ---

func TestListCategories_PaginationDefaults(t *testing.T) {
	repo := &stubResourceRepo{}
	h := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories?page=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.lastPage)
	assert.Equal(t, 12, repo.lastSize)
}

func TestListCategories_PageSizeCapped(t *testing.T) {
	repo := &stubResourceRepo{}
	h := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories?page=3&page_size=9999", nil))

	assert.Equal(t, 3, repo.lastPage)
	assert.Equal(t, 100, repo.lastSize)
}

func TestGetCategory_NotFound(t *testing.T) {
	h := newTestHandler(&stubResourceRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCategory(t *testing.T) {
	repo := &stubResourceRepo{}
	h := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Tools"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Tools", repo.created)
}

func TestCreateCategory_EmptyName(t *testing.T) {
	h := newTestHandler(&stubResourceRepo{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"  "}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCategory_ConstraintViolation(t *testing.T) {
	repo := &stubResourceRepo{err: catalog.ErrConstraint}
	h := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Tools"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateProduct_WithFile(t *testing.T) {
	svc := &stubProductService{}
	h := newTestHandler(nil, svc)

	body, contentType := productFormBody(t, map[string]string{
		"title":       "Widget",
		"price":       "10.50",
		"category_id": "cat-1",
	}, "photo.png")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.lastCreate.ImageFile)
	assert.Equal(t, "photo.png", svc.lastCreate.ImageFile.Filename)
	assert.True(t, decimal.RequireFromString("10.50").Equal(svc.lastCreate.Price))
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	h := newTestHandler(nil, &stubProductService{})

	body, contentType := productFormBody(t, map[string]string{
		"title":       "Widget",
		"price":       "not-a-number",
		"category_id": "cat-1",
	}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProduct_ImageOmitted(t *testing.T) {
	svc := &stubProductService{}
	h := newTestHandler(nil, svc)

	body, contentType := productFormBody(t, map[string]string{
		"title":       "New",
		"price":       "10.00",
		"category_id": "cat-1",
	}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/products/p1", body)
	req.Header.Set("Content-Type", contentType)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", svc.lastID)
	assert.False(t, svc.lastUpdate.ImageURL.Include())
	assert.Nil(t, svc.lastUpdate.ImageFile)
}

func TestUpdateProduct_ExplicitEmptyURLClears(t *testing.T) {
	svc := &stubProductService{}
	h := newTestHandler(nil, svc)

	body, contentType := productFormBody(t, map[string]string{
		"title":       "New",
		"price":       "10.00",
		"category_id": "cat-1",
		"image_url":   "",
	}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/products/p1", body)
	req.Header.Set("Content-Type", contentType)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.lastUpdate.ImageURL.Include(), "explicit empty url must clear, not omit")
	assert.Equal(t, "", svc.lastUpdate.ImageURL.Value())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc := &stubProductService{err: catalog.ErrNotFound}
	h := newTestHandler(nil, svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	svc := &stubProductService{page: catalog.Page[product.Product]{
		Items:      []product.Product{{ID: "p1", Title: "Widget"}},
		Total:      1,
		TotalPages: 1,
	}}
	h := newTestHandler(nil, svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var page catalog.Page[product.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
}
