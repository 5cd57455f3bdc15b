package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/constants"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

const storeMongoDB = "mongodb"

func connectMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return client, nil
}

// MongoReader streams documents from a collection. The _id is lifted into the
// document identity and removed from the record body so the destination store
// assigns or reuses it on its own terms.
type MongoReader struct {
	client *mongo.Client
	coll   *mongo.Collection
	filter bson.M
	logger logger.Logger
}

func NewMongoReader(src config.SourceConfig, log logger.Logger) (*MongoReader, error) {
	client, err := connectMongo(src.URI)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if src.Query != "" {
		if err := json.Unmarshal([]byte(src.Query), &filter); err != nil {
			return nil, fmt.Errorf("mongodb query filter: %w", err)
		}
	}

	return &MongoReader{
		client: client,
		coll:   client.Database(src.Database).Collection(src.Collection),
		filter: filter,
		logger: log,
	}, nil
}

func (r *MongoReader) Name() string { return storeMongoDB }

// Client exposes the underlying connection for health checks. The client
// stays connected after Read returns; the owner closes it on shutdown.
func (r *MongoReader) Client() *mongo.Client { return r.client }

func (r *MongoReader) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoReader) Read(ctx context.Context, out chan<- Document) error {
	defer close(out)

	cursor, err := r.coll.Find(ctx, r.filter)
	if err != nil {
		return fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var record map[string]interface{}
		if err := cursor.Decode(&record); err != nil {
			return fmt.Errorf("mongodb decode: %w", err)
		}

		var id string
		if rawID, ok := record["_id"]; ok {
			id = fmt.Sprintf("%v", rawID)
			delete(record, "_id")
		}

		select {
		case out <- Document{ID: id, Source: record}:
			metrics.ReaderRecordsTotal.WithLabelValues(storeMongoDB).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	metrics.ReaderPagesTotal.WithLabelValues(storeMongoDB).Inc()

	return cursor.Err()
}

type MongoWriter struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger logger.Logger
}

func NewMongoWriter(dst config.DestConfig, log logger.Logger) (*MongoWriter, error) {
	client, err := connectMongo(dst.URI)
	if err != nil {
		return nil, err
	}

	return &MongoWriter{
		client: client,
		coll:   client.Database(dst.Database).Collection(dst.Collection),
		logger: log,
	}, nil
}

func (w *MongoWriter) Name() string { return storeMongoDB }

func (w *MongoWriter) Client() *mongo.Client { return w.client }

func (w *MongoWriter) WriteBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		models = append(models, doc.Source)
	}

	if _, err := w.coll.InsertMany(ctx, models); err != nil {
		metrics.WriterBatchesTotal.WithLabelValues(storeMongoDB, "error").Inc()
		return fmt.Errorf("mongodb insert: %w", err)
	}

	metrics.WriterBatchesTotal.WithLabelValues(storeMongoDB, "success").Inc()
	metrics.WriterRecordsTotal.WithLabelValues(storeMongoDB).Add(float64(len(docs)))
	return nil
}

func (w *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	return w.client.Disconnect(ctx)
}
