package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/catalog"
)

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListCategories returns all categories
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// GetCategory returns a single category by id
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/categories/")

	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// CreateCategory creates a new category (admin only)
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Slug, req.Description)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// DeleteCategory deletes a category (admin only)
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/categories/")

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// ImportCategories bulk-creates categories from a CSV request body
// (admin only). Columns: name, slug (optional), description (optional).
func (h *Handlers) ImportCategories(w http.ResponseWriter, r *http.Request) {
	imported, err := h.catalog.ImportCategoriesCSV(r.Context(), r.Body)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyImport) {
			respondJSONError(w, "Import contains no categories", http.StatusBadRequest)
			return
		}
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"imported":   len(imported),
		"categories": imported,
	})
}
