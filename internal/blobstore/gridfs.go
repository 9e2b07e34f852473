package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ── GridFS Store ───────────────────────────────────────────
// A container is a GridFS bucket; an object is the latest file revision
// under its name. Put uploads a new revision and then drops older ones, so
// readers never see the object missing.

// GridFSStore stages files into GridFS buckets of one database.
type GridFSStore struct {
	db *mongo.Database
}

// NewGridFSStore creates a store over db.
func NewGridFSStore(db *mongo.Database) *GridFSStore {
	return &GridFSStore{db: db}
}

func (s *GridFSStore) bucket(container string) *mongo.GridFSBucket {
	return s.db.GridFSBucket(options.GridFSBucket().SetName(container))
}

// ContainerExists reports whether the bucket's files collection exists.
func (s *GridFSStore) ContainerExists(ctx context.Context, container string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: container + ".files"}})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

// CreateContainer creates the bucket's files and chunks collections.
func (s *GridFSStore) CreateContainer(ctx context.Context, container string) error {
	for _, suffix := range []string{".files", ".chunks"} {
		if err := s.db.CreateCollection(ctx, container+suffix); err != nil {
			return fmt.Errorf("create collection %s%s: %w", container, suffix, err)
		}
	}
	return nil
}

// Put uploads localPath as objectName, replacing earlier revisions.
func (s *GridFSStore) Put(ctx context.Context, container, localPath, objectName string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	bucket := s.bucket(container)
	id, err := bucket.UploadFromStream(ctx, objectName, f)
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}

	cursor, err := bucket.Find(ctx, bson.D{
		{Key: "filename", Value: objectName},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: id}}},
	})
	if err != nil {
		return fmt.Errorf("find old revisions of %s: %w", objectName, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var old struct {
			ID bson.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&old); err != nil {
			return fmt.Errorf("decode revision: %w", err)
		}
		if err := bucket.Delete(ctx, old.ID); err != nil {
			slog.Warn("delete old revision", "container", container, "object", objectName, "id", old.ID.Hex(), "error", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterate revisions: %w", err)
	}

	slog.Debug("object staged", "container", container, "object", objectName, "id", id.Hex())
	return nil
}
