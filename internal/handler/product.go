package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/vailshop/catalog-admin/internal/domain/product"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// file parts spill to disk.
const maxUploadMemory = 32 << 20

func (h *Handler) productRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Delete("/{id}", h.deleteProduct)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	result, err := h.products.List(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// createProduct accepts multipart/form-data: title, description, price,
// category_id, and either an image_file part or an image_url field.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := parseProductForm(w, r)
	if !ok {
		return
	}

	p, err := h.products.Create(r.Context(), product.CreateParams{
		Title:       form.title,
		Description: form.description,
		Price:       form.price,
		CategoryID:  form.categoryID,
		ImageFile:   form.file,
		ImageURL:    form.imageURL,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// updateProduct accepts the same form as createProduct. The image carries
// explicit intent: a file part replaces the image, an image_url field
// replaces (or, when empty, clears) it, and omitting both leaves the stored
// reference untouched.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := parseProductForm(w, r)
	if !ok {
		return
	}

	patch := product.ImageUnchanged()
	if form.imageURLSet {
		patch = product.ImageSet(form.imageURL)
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), product.UpdateParams{
		Title:       form.title,
		Description: form.description,
		Price:       form.price,
		CategoryID:  form.categoryID,
		ImageFile:   form.file,
		ImageURL:    patch,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type productForm struct {
	title       string
	description string
	price       decimal.Decimal
	categoryID  string
	file        *product.Upload
	imageURL    string
	imageURLSet bool
}

// parseProductForm decodes the multipart admin form. Presence of the
// image_url field is tracked separately from its value: "field absent" and
// "field present but empty" mean different things on update.
func parseProductForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondBadRequest(w, "invalid multipart form")
		return productForm{}, false
	}

	var form productForm
	form.title = r.FormValue("title")
	form.description = r.FormValue("description")
	form.categoryID = r.FormValue("category_id")

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		respondBadRequest(w, "invalid price")
		return productForm{}, false
	}
	form.price = price

	if values, ok := r.MultipartForm.Value["image_url"]; ok && len(values) > 0 {
		form.imageURL = values[0]
		form.imageURLSet = true
	}

	f, fh, err := r.FormFile("image_file")
	switch {
	case err == nil:
		form.file = &product.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Data:        f,
		}
	case errors.Is(err, http.ErrMissingFile):
		// no file part
	default:
		respondBadRequest(w, "invalid image_file part")
		return productForm{}, false
	}

	return form, true
}
