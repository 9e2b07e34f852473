package refdata

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"prodexport/internal/domain"
)

// Collection names used when none are configured.
const (
	DefaultSupplierCollection = "suppliers"
	DefaultCategoryCollection = "categories"
	DefaultFamilyCollection   = "families"
)

// MongoCollections names the reference-data collections.
type MongoCollections struct {
	Suppliers  string
	Categories string
	Families   string
}

func (c *MongoCollections) applyDefaults() {
	if c.Suppliers == "" {
		c.Suppliers = DefaultSupplierCollection
	}
	if c.Categories == "" {
		c.Categories = DefaultCategoryCollection
	}
	if c.Families == "" {
		c.Families = DefaultFamilyCollection
	}
}

// MongoStore reads reference data from documents keyed by numeric _id.
type MongoStore struct {
	suppliers  *mongo.Collection
	categories *mongo.Collection
	families   *mongo.Collection
}

// NewMongoStore creates a store over db.
func NewMongoStore(db *mongo.Database, names MongoCollections) *MongoStore {
	names.applyDefaults()
	return &MongoStore{
		suppliers:  db.Collection(names.Suppliers),
		categories: db.Collection(names.Categories),
		families:   db.Collection(names.Families),
	}
}

func (s *MongoStore) FindSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var out domain.Supplier
	if err := findByID(ctx, s.suppliers, id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) FindCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var out domain.Category
	if err := findByID(ctx, s.categories, id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) FindFamily(ctx context.Context, id int64) (*domain.Family, error) {
	var out domain.Family
	if err := findByID(ctx, s.families, id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func findByID(ctx context.Context, coll *mongo.Collection, id int64, out any) error {
	err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %d: %w", coll.Name(), id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s %d: %w", coll.Name(), id, err)
	}
	return nil
}
