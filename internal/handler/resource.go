package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
)

type resourceBody struct {
	Name string `json:"name"`
}

// resourceRoutes mounts the shared CRUD surface for a name-keyed resource
// (categories, carriers) onto a subrouter.
func resourceRoutes[T any](repo catalog.Repository[T], kind string) func(chi.Router) {
	h := &resourceHandler[T]{repo: repo, kind: kind}
	return func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/all", h.getAll)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	}
}

type resourceHandler[T any] struct {
	repo catalog.Repository[T]
	kind string
}

func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	result, err := h.repo.List(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *resourceHandler[T]) getAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.GetAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Create(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *resourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *resourceHandler[T]) decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body resourceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return "", false
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		respondBadRequest(w, h.kind+" name is required")
		return "", false
	}
	return name, true
}
