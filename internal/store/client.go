package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collections the dashboard persists into. The document store is the system
// of record for everything here; ERP mirrors (inventory, sales) may be stale.
const (
	CollectionInventory   = "inventory"
	CollectionSales       = "sales"
	CollectionSalesLines  = "salesLines"
	CollectionCharts      = "charts"
	CollectionDashboards  = "dashboards"
	CollectionRoles       = "roles"
	CollectionPermissions = "permissions"
	CollectionFeatures    = "features"
	CollectionConnections = "netsuite_connections"
	CollectionSyncHistory = "sync_history"
	CollectionSyncLogs    = "sync_logs"
)

var ErrMissingConnectionString = errors.New("mongo connection string is required")

// Document is an untyped persisted record.
type Document = map[string]any

// Filter selects documents by exact field match.
type Filter = map[string]any

// Store is a thin typed facade over the mongo driver. Reads strip the
// driver-level _id and stringify ObjectIDs so callers never see raw binary
// identifiers.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.MongoConnectionString) == "" {
		return nil, ErrMissingConnectionString
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoConnectionString))
	if err != nil {
		return nil, fmt.Errorf("connecting to document store: %w", err)
	}

	return &Store{
		db:     client.Database(cfg.MongoDatabase),
		logger: logger.Named("store"),
	}, nil
}

// Close disconnects the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// ReadOption adjusts how documents come back from Read.
type ReadOption func(*readOptions)

type readOptions struct {
	keepID bool
}

// WithID keeps the document identity on read results, stringified.
func WithID() ReadOption {
	return func(o *readOptions) { o.keepID = true }
}

// Read returns every document matching filter. Pass a nil filter for all.
func (s *Store) Read(ctx context.Context, collection string, filter Filter, opts ...ReadOption) ([]Document, error) {
	var ro readOptions
	for _, opt := range opts {
		opt(&ro)
	}

	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		docs = append(docs, sanitize(raw, ro.keepID))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// Upsert writes document under keyFilter, inserting when absent.
func (s *Store) Upsert(ctx context.Context, collection string, keyFilter Filter, document Document) error {
	_, err := s.db.Collection(collection).UpdateOne(
		ctx,
		toBSON(keyFilter),
		bson.M{"$set": bson.M(document)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting into %s: %w", collection, err)
	}
	s.logger.Debug("document upserted", zap.String("collection", collection))
	return nil
}

// Delete removes every document matching keyFilter.
func (s *Store) Delete(ctx context.Context, collection string, keyFilter Filter) error {
	_, err := s.db.Collection(collection).DeleteMany(ctx, toBSON(keyFilter))
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

// sanitize stringifies ObjectIDs, converts driver container types to plain
// maps and slices, and drops _id unless requested.
func sanitize(raw bson.M, keepID bool) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if keepID {
				doc["_id"] = normalize(v)
			}
			continue
		}
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, elem := range val {
			out[elem.Key] = normalize(elem.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}

// SyncStatus values recorded in the sync log.
const (
	SyncSuccess        = "success"
	SyncPartialSuccess = "partial_success"
	SyncFailed         = "failed"
)

// AppendSyncLog records one sync outcome. The log is append-only.
func (s *Store) AppendSyncLog(ctx context.Context, syncType, status, details string) error {
	_, err := s.db.Collection(CollectionSyncLogs).InsertOne(ctx, bson.M{
		"sync_type": syncType,
		"status":    status,
		"details":   details,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("appending sync log: %w", err)
	}
	return nil
}
