package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"freshport.io/internal/auth"
	"freshport.io/internal/catalog"
)

type createProductRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Origin      string `json:"origin_country"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsFeatured  bool   `json:"is_featured"`
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Origin      *string `json:"origin_country"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsFeatured  *bool   `json:"is_featured"`
	IsActive    *bool   `json:"is_active"`
}

// handlePublicProducts serves the marketing site: active products only, no
// session required.
func (a *API) handlePublicProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	products, err := a.catalog.List(r.Context(), false)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handlePublicProductByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	p, err := a.catalog.Get(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	if !p.IsActive {
		// неактивные товары для публичной части не существуют
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requirePermission(w, r, auth.ActionViewProducts); !ok {
			return
		}
		products, err := a.catalog.List(r.Context(), true)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		id, ok := a.requireMutation(w, r, auth.ActionCreateProduct)
		if !ok {
			return
		}
		var req createProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.catalog.Create(r.Context(), req.Name, req.Category, req.Origin, req.Description, req.ImageURL, req.IsFeatured)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), id.ID, "PRODUCT_CREATE", "product", p.ID, map[string]any{
			"name": p.Name,
		})
		w.Header().Set("Location", fmt.Sprintf("/v1/admin/products/%s", p.ID))
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleAdminProductScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requirePermission(w, r, auth.ActionViewProducts); !ok {
			return
		}
		p, err := a.catalog.Get(r.Context(), id)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		actor, ok := a.requireMutation(w, r, auth.ActionUpdateProduct)
		if !ok {
			return
		}
		var req updateProductRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.catalog.Update(r.Context(), id, catalog.ProductUpdate{
			Name:          req.Name,
			Category:      req.Category,
			OriginCountry: req.Origin,
			Description:   req.Description,
			ImageURL:      req.ImageURL,
			IsFeatured:    req.IsFeatured,
			IsActive:      req.IsActive,
		})
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), actor.ID, "PRODUCT_UPDATE", "product", p.ID, map[string]any{
			"name": p.Name,
		})
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		actor, ok := a.requireMutation(w, r, auth.ActionDeleteProduct)
		if !ok {
			return
		}
		if err := a.catalog.Delete(r.Context(), id); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), actor.ID, "PRODUCT_DELETE", "product", id, nil)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func handleCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
