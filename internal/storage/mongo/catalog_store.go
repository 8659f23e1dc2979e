// Package mongo implements the catalog store on the MongoDB document store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/catalog"
	"github.com/lvndry/clausea-backend/internal/metrics"
)

// Collection names in the document store.
const (
	productsCollection  = "products"
	documentsCollection = "documents"
	overviewsCollection = "product_overviews"
)

// CatalogStore implements catalog.Store and catalog.OverviewSource over a
// single shared mongo client. The client is injected at startup and scoped
// to the process lifetime; handlers share it across requests.
type CatalogStore struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewCatalogStore wires a CatalogStore onto a database handle.
func NewCatalogStore(db *mongo.Database, logger *zap.Logger) *CatalogStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogStore{db: db, logger: logger}
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			zap.L().Error("failed to disconnect after ping failure", zap.Error(disconnectErr))
		}
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the service relies on. The unique slug
// index is what actually enforces slug uniqueness; the pre-insert existence
// check in the creation flow only exists for a friendly error message.
func (s *CatalogStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "domains", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	_, err = s.db.Collection(documentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "product_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create document indexes: %w", err)
	}
	return nil
}

// excludeInternalID keeps the storage-internal _id out of decoded models.
var excludeInternalID = bson.M{"_id": 0}

// ListProducts returns every product sorted by name ascending. Records
// missing the id field are skipped with a warning rather than failing the
// whole listing.
func (s *CatalogStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(excludeInternalID)
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	var products []catalog.Product
	for cursor.Next(ctx) {
		var p catalog.Product
		if err := cursor.Decode(&p); err != nil {
			s.logger.Warn("skipping undecodable product record", zap.Error(err))
			continue
		}
		if p.ID == "" {
			s.logger.Warn("skipping product record missing id field",
				zap.String("slug", p.Slug), zap.String("name", p.Name))
			continue
		}
		products = append(products, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetProductBySlug fetches one product by slug.
func (s *CatalogStore) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	return s.findProduct(ctx, bson.M{"slug": slug})
}

// GetProductByDomain matches a bare hostname against the domains array.
func (s *CatalogStore) GetProductByDomain(ctx context.Context, domain string) (catalog.Product, error) {
	return s.findProduct(ctx, bson.M{"domains": domain})
}

func (s *CatalogStore) findProduct(ctx context.Context, filter bson.M) (catalog.Product, error) {
	opts := options.FindOne().SetProjection(excludeInternalID)
	var p catalog.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, filter, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// CreateProduct inserts the full product representation. The unique slug
// index rejects duplicates at the storage level.
func (s *CatalogStore) CreateProduct(ctx context.Context, p catalog.Product) error {
	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	s.logger.Info("created product", zap.String("id", p.ID), zap.String("name", p.Name))
	return nil
}

// UpdateProduct replaces the mutable fields of the product matched by id.
func (s *CatalogStore) UpdateProduct(ctx context.Context, p catalog.Product) error {
	result, err := s.db.Collection(productsCollection).
		UpdateOne(ctx, bson.M{"id": p.ID}, bson.M{"$set": p})
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if result.ModifiedCount == 0 {
		return catalog.ErrNotFound
	}
	s.logger.Info("updated product", zap.String("id", p.ID))
	return nil
}

// DeleteProduct removes the product matched by id.
func (s *CatalogStore) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.Collection(productsCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	s.logger.Info("deleted product", zap.String("id", id))
	return nil
}

// ListDocuments returns every analysis document.
func (s *CatalogStore) ListDocuments(ctx context.Context) ([]catalog.Document, error) {
	return s.findDocuments(ctx, bson.M{})
}

// ListDocumentsByProductID returns the documents linked to a product.
func (s *CatalogStore) ListDocumentsByProductID(ctx context.Context, productID string) ([]catalog.Document, error) {
	return s.findDocuments(ctx, bson.M{"product_id": productID})
}

// ListDocumentsBySlug resolves the slug to a product, then lists its
// documents.
func (s *CatalogStore) ListDocumentsBySlug(ctx context.Context, slug string) ([]catalog.Document, error) {
	p, err := s.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.findDocuments(ctx, bson.M{"product_id": p.ID})
}

func (s *CatalogStore) findDocuments(ctx context.Context, filter bson.M) ([]catalog.Document, error) {
	opts := options.Find().SetProjection(excludeInternalID)
	cursor, err := s.db.Collection(documentsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	var docs []catalog.Document
	for cursor.Next(ctx) {
		var d catalog.Document
		if err := cursor.Decode(&d); err != nil {
			s.logger.Warn("skipping undecodable document record", zap.Error(err))
			continue
		}
		docs = append(docs, d)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// countRow is one $group result from the per-product count aggregation.
type countRow struct {
	ProductID *string `bson:"_id"`
	Count     int64   `bson:"count"`
}

// CountDocumentsByProduct groups documents by product_id. Rows with a null
// or absent key are dropped from the result; the drop is surfaced through
// the dropped-records metric and a log line so data hygiene problems stay
// visible.
func (s *CatalogStore) CountDocumentsByProduct(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$product_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.db.Collection(documentsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate document counts: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	var rows []countRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode document counts: %w", err)
	}

	counts, dropped := collectCounts(rows)
	if dropped > 0 {
		metrics.AddDroppedDocumentCounts(dropped)
		s.logger.Warn("documents without product_id excluded from counts",
			zap.Int64("dropped", dropped))
	}
	return counts, nil
}

// collectCounts splits aggregation rows into keyed counts and the number of
// orphaned documents dropped for lacking a product_id.
func collectCounts(rows []countRow) (map[string]int64, int64) {
	counts := make(map[string]int64, len(rows))
	var dropped int64
	for _, row := range rows {
		if row.ProductID == nil || *row.ProductID == "" {
			dropped += row.Count
			continue
		}
		counts[*row.ProductID] = row.Count
	}
	return counts, dropped
}

// GetOverview reads the analysis overview for a product slug.
func (s *CatalogStore) GetOverview(ctx context.Context, slug string) (catalog.Overview, error) {
	opts := options.FindOne().SetProjection(excludeInternalID)
	var o catalog.Overview
	err := s.db.Collection(overviewsCollection).
		FindOne(ctx, bson.M{"slug": slug}, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Overview{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Overview{}, fmt.Errorf("find overview for %s: %w", slug, err)
	}
	return o, nil
}
