package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"prodexport/internal/dbclient"
	"prodexport/internal/domain"
	"prodexport/internal/etl"
)

// ── MongoDB Source ─────────────────────────────────────────
// Reads the product pool from a collection of {_id: <product id>, value: <doc>}
// documents through a server-side cursor. value is either the JSON text of the
// product document or the product document embedded as BSON.

type mongoProvider struct{}

func init() { etl.RegisterSource(&mongoProvider{}) }

func (p *mongoProvider) Type() string { return "mongo" }

// Open expects cfg["connection"] (*domain.DatabaseConnection) and
// cfg["password"]; "collection" and "batchSize" are optional.
func (p *mongoProvider) Open(ctx context.Context, cfg etl.SourceConfig, offset int64) (etl.RecordSource, error) {
	conn, ok := cfg["connection"].(*domain.DatabaseConnection)
	if !ok || conn == nil {
		return nil, fmt.Errorf("mongo source: connection is required")
	}
	mdb, err := dbclient.ConnectMongo(ctx, conn, cfg.String("password", ""))
	if err != nil {
		return nil, err
	}
	coll := mdb.DB.Collection(cfg.String("collection", DefaultTable))
	src, err := NewMongoSource(ctx, coll, offset, int32(cfg.Int("batchSize", DefaultBatchSize)))
	if err != nil {
		mdb.Close(context.Background())
		return nil, err
	}
	src.client = mdb
	return src, nil
}

type productInfoDoc struct {
	ID    int64         `bson:"_id"`
	Value bson.RawValue `bson:"value"`
}

// rawRecord renders the stored value as the JSON the transformer decodes.
// Embedded documents are written as relaxed extended JSON, so numbers stay
// plain JSON numbers.
func (d productInfoDoc) rawRecord() (etl.RawRecord, error) {
	switch d.Value.Type {
	case bson.TypeString:
		return etl.RawRecord(d.Value.StringValue()), nil
	case bson.TypeEmbeddedDocument:
		out, err := bson.MarshalExtJSON(d.Value.Document(), false, false)
		if err != nil {
			return nil, fmt.Errorf("product %d: render value: %w", d.ID, err)
		}
		return etl.RawRecord(out), nil
	}
	// Anything else cannot hold a product; an empty record is skipped downstream.
	slog.Warn("mongo source: unsupported value type", "product_id", d.ID, "type", d.Value.Type.String())
	return etl.RawRecord{}, nil
}

// MongoSource iterates a product_info collection in _id order.
type MongoSource struct {
	cursor *mongo.Cursor
	client *dbclient.MongoDatabase
}

// NewMongoSource opens a cursor over coll for _id >= offset.
func NewMongoSource(ctx context.Context, coll *mongo.Collection, offset int64, batchSize int32) (*MongoSource, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetBatchSize(batchSize)
	cursor, err := coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$gte", Value: offset}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return &MongoSource{cursor: cursor}, nil
}

func (s *MongoSource) Next(ctx context.Context) (etl.RawRecord, error) {
	if !s.cursor.Next(ctx) {
		if err := s.cursor.Err(); err != nil {
			return nil, fmt.Errorf("cursor: %w", err)
		}
		return nil, io.EOF
	}
	var doc productInfoDoc
	if err := s.cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.rawRecord()
}

func (s *MongoSource) Close() error {
	ctx := context.Background()
	err := s.cursor.Close(ctx)
	if s.client != nil {
		if cerr := s.client.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
