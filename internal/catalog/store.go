package catalog

import (
	"context"
	"errors"
)

// ErrNotFound reports that a lookup matched nothing. Callers use it to
// distinguish "no such record" from a backend failure instead of collapsing
// both into an empty result.
var ErrNotFound = errors.New("catalog: not found")

// Store persists products and documents. Implementations: the Mongo-backed
// store in production and an in-memory fake for tests.
type Store interface {
	// ListProducts returns every product sorted by name ascending. Records
	// missing the required id field are skipped, not fatal.
	ListProducts(ctx context.Context) ([]Product, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	// GetProductByDomain matches a bare hostname against the domains list.
	GetProductByDomain(ctx context.Context, domain string) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
	// UpdateProduct replaces the mutable fields of the product matched by ID.
	// Returns ErrNotFound if no record was modified.
	UpdateProduct(ctx context.Context, p Product) error
	// DeleteProduct returns ErrNotFound if no record was removed.
	DeleteProduct(ctx context.Context, id string) error

	ListDocuments(ctx context.Context) ([]Document, error)
	ListDocumentsByProductID(ctx context.Context, productID string) ([]Document, error)
	ListDocumentsBySlug(ctx context.Context, slug string) ([]Document, error)
	// CountDocumentsByProduct groups documents by product_id. Groups with a
	// null or absent key are dropped; implementations report how many via
	// the dropped-records metric.
	CountDocumentsByProduct(ctx context.Context) (map[string]int64, error)
}

// OverviewSource reads analysis overviews owned by the external pipeline.
type OverviewSource interface {
	// GetOverview returns the overview for a product slug, or ErrNotFound
	// when the product has not been analyzed yet.
	GetOverview(ctx context.Context, slug string) (Overview, error)
}
