// Package store persists extracted products to MongoDB. The crawl
// pipeline itself stays persistence-free: it produces fully-coerced
// records and this package's only job is to save them in bulk.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store wraps the products collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect establishes the MongoDB connection and verifies it with a
// ping inside cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	slog.Info("mongo connected", "database", cfg.Database, "collection", cfg.Collection)
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// SaveAll bulk-inserts the products. A nil or empty slice is a no-op.
func (s *Store) SaveAll(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return models.NewCrawlError(models.ErrCodeStorage, "failed to save products", err)
	}
	return nil
}

// FindByKeyword returns every stored product crawled for keyword,
// newest first.
func (s *Store) FindByKeyword(ctx context.Context, keyword string) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "crawledAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"keyword": keyword}, opts)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeStorage, "failed to query products", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeStorage, "failed to decode products", err)
	}
	return products, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
