package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/catalog"
	"github.com/lvndry/clausea-backend/internal/dashboard"
)

// productWithCount pairs a product with its analysis document count for the
// admin listing.
type productWithCount struct {
	catalog.Product
	DocumentCount int64 `json:"document_count"`
}

// listProducts returns every product, name-sorted, with document counts.
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.logger.Error("list products failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list products")
		return
	}
	counts, err := s.store.CountDocumentsByProduct(r.Context())
	if err != nil {
		s.logger.Error("count documents failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to count documents")
		return
	}

	out := make([]productWithCount, 0, len(products))
	for _, p := range products {
		out = append(out, productWithCount{Product: p, DocumentCount: counts[p.ID]})
	}
	writeJSON(s.logger, w, http.StatusOK, out)
}

// createProduct runs a form submission through the dashboard flow.
// Responses mirror the form state machine: validation problems come back as
// the editing form with errors, success as the rendered success form.
func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var input dashboard.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}

	form := dashboard.NewForm()
	form.Input = input
	next, err := s.flow.Submit(r.Context(), form)
	if err != nil {
		s.logger.Error("product creation flow failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to create product")
		return
	}

	if next.Created == nil {
		status := http.StatusBadRequest
		for _, msg := range next.Errors {
			if strings.Contains(msg, "already exists") {
				status = http.StatusConflict
				break
			}
		}
		writeJSON(s.logger, w, status, next)
		return
	}

	writeJSON(s.logger, w, http.StatusCreated, next.Render())
}

// updateProduct replaces the mutable fields of the product in the path.
func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p.ID = chi.URLParam(r, "product_id")
	p = p.Normalize()
	if errs := p.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		writeJSON(s.logger, w, http.StatusBadRequest, map[string]any{"errors": msgs})
		return
	}

	err := s.store.UpdateProduct(r.Context(), p)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(s.logger, w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("update product failed", zap.String("id", p.ID), zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to update product")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, p)
}

// deleteProduct removes the product in the path.
func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	err := s.store.DeleteProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(s.logger, w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("delete product failed", zap.String("id", id), zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// listProductDocuments returns the documents for the product slug in the path.
func (s *Server) listProductDocuments(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	docs, err := s.store.ListDocumentsBySlug(r.Context(), slug)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(s.logger, w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("list product documents failed", zap.String("slug", slug), zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []catalog.Document{}
	}
	writeJSON(s.logger, w, http.StatusOK, docs)
}

// listDocuments returns every analysis document.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []catalog.Document{}
	}
	writeJSON(s.logger, w, http.StatusOK, docs)
}
