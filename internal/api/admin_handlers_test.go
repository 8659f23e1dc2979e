package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lvndry/clausea-backend/internal/catalog"
)

func TestAdminCreateProduct_Succeeds(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	body := strings.NewReader(`{
		"name": "Google Drive",
		"company_name": "Google",
		"domains": ["drive.google.com"],
		"categories": ["SaaS"]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/products/", body)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var form map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	require.Equal(t, "success-shown", form["state"])
	created, ok := form["created"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "google-drive", created["slug"])

	stored, err := store.GetProductBySlug(req.Context(), "google-drive")
	require.NoError(t, err)
	require.Equal(t, "Google", stored.CompanyName)
}

func TestAdminCreateProduct_ValidationErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/products/", strings.NewReader(`{"name":"  "}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Product name is required!")
	require.Contains(t, rec.Body.String(), "At least one domain or crawl base URL is required!")
}

func TestAdminCreateProduct_DuplicateSlugIsConflict(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seedProduct(t, store, catalog.Product{
		ID: "p1", Name: "Zoom", Slug: "zoom", Domains: []string{"zoom.us"},
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/products/",
		strings.NewReader(`{"name":"Zoom","domains":["zoom.us"]}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")
}

func TestAdminListProducts_IncludesDocumentCounts(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seedProduct(t, store, catalog.Product{
		ID: "p1", Name: "Netflix", Slug: "netflix", Domains: []string{"netflix.com"},
	})
	store.SeedDocument(catalog.Document{ID: "d1", ProductID: "p1"})
	store.SeedDocument(catalog.Document{ID: "d2", ProductID: "p1"})

	req := httptest.NewRequest(http.MethodGet, "/admin/products/", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "netflix", out[0]["slug"])
	require.EqualValues(t, 2, out[0]["document_count"])
}

func TestAdminUpdateProduct(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seedProduct(t, store, catalog.Product{
		ID: "p1", Name: "Netflix", Slug: "netflix", Domains: []string{"netflix.com"},
	})

	body := strings.NewReader(`{"name":"Netflix","slug":"netflix","domains":["netflix.com","netflix.co.uk"]}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/products/p1", body)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	updated, err := store.GetProductBySlug(req.Context(), "netflix")
	require.NoError(t, err)
	require.Equal(t, []string{"netflix.com", "netflix.co.uk"}, updated.Domains)
}

func TestAdminUpdateProduct_NotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	body := strings.NewReader(`{"name":"Ghost","domains":["ghost.org"]}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/products/missing", body)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteProduct(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seedProduct(t, store, catalog.Product{
		ID: "p1", Name: "Netflix", Slug: "netflix", Domains: []string{"netflix.com"},
	})

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/p1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/products/p1", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListProductDocuments(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seedProduct(t, store, catalog.Product{
		ID: "p1", Name: "Netflix", Slug: "netflix", Domains: []string{"netflix.com"},
	})
	store.SeedDocument(catalog.Document{ID: "d1", ProductID: "p1"})

	req := httptest.NewRequest(http.MethodGet, "/admin/products/netflix/documents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []catalog.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	require.Equal(t, "p1", docs[0].ProductID)

	req = httptest.NewRequest(http.MethodGet, "/admin/products/ghost/documents", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
