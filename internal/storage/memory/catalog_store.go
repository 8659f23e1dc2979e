// Package memory provides in-memory store implementations for
// development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lvndry/clausea-backend/internal/catalog"
)

// CatalogStore is an in-memory catalog.Store and catalog.OverviewSource.
type CatalogStore struct {
	mu        sync.RWMutex
	products  map[string]catalog.Product // keyed by id
	documents map[string]catalog.Document
	overviews map[string]catalog.Overview // keyed by product slug

	// Err, when set, is returned by every operation. Tests use it to
	// exercise backend-failure paths.
	Err error
}

// NewCatalogStore constructs an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		products:  make(map[string]catalog.Product),
		documents: make(map[string]catalog.Document),
		overviews: make(map[string]catalog.Overview),
	}
}

// ListProducts returns every product sorted by name ascending.
func (s *CatalogStore) ListProducts(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetProductBySlug fetches a product by its slug.
func (s *CatalogStore) GetProductBySlug(_ context.Context, slug string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return catalog.Product{}, s.Err
	}
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

// GetProductByDomain matches a bare hostname against product domains.
func (s *CatalogStore) GetProductByDomain(_ context.Context, domain string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return catalog.Product{}, s.Err
	}
	for _, p := range s.products {
		for _, d := range p.Domains {
			if d == domain {
				return p, nil
			}
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

// CreateProduct inserts a product, enforcing slug uniqueness the way the
// Mongo unique index does.
func (s *CatalogStore) CreateProduct(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return errors.New("duplicate slug")
		}
	}
	s.products[p.ID] = p
	return nil
}

// UpdateProduct replaces the product matched by ID.
func (s *CatalogStore) UpdateProduct(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

// DeleteProduct removes the product matched by ID.
func (s *CatalogStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// ListDocuments returns every document.
func (s *CatalogStore) ListDocuments(_ context.Context) ([]catalog.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]catalog.Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, d)
	}
	return out, nil
}

// ListDocumentsByProductID returns the documents linked to a product.
func (s *CatalogStore) ListDocumentsByProductID(_ context.Context, productID string) ([]catalog.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []catalog.Document
	for _, d := range s.documents {
		if d.ProductID == productID {
			out = append(out, d)
		}
	}
	return out, nil
}

// ListDocumentsBySlug resolves the slug to a product and lists its documents.
func (s *CatalogStore) ListDocumentsBySlug(ctx context.Context, slug string) ([]catalog.Document, error) {
	p, err := s.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.ListDocumentsByProductID(ctx, p.ID)
}

// CountDocumentsByProduct groups documents by product_id, dropping
// documents without one.
func (s *CatalogStore) CountDocumentsByProduct(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	counts := make(map[string]int64)
	for _, d := range s.documents {
		if d.ProductID == "" {
			continue
		}
		counts[d.ProductID]++
	}
	return counts, nil
}

// GetOverview returns the seeded overview for a slug.
func (s *CatalogStore) GetOverview(_ context.Context, slug string) (catalog.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return catalog.Overview{}, s.Err
	}
	o, ok := s.overviews[slug]
	if !ok {
		return catalog.Overview{}, catalog.ErrNotFound
	}
	return o, nil
}

// SeedDocument adds a document directly, bypassing validation. Test helper.
func (s *CatalogStore) SeedDocument(d catalog.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = d
}

// SeedOverview registers an overview for a product slug. Test helper.
func (s *CatalogStore) SeedOverview(slug string, o catalog.Overview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overviews[slug] = o
}
