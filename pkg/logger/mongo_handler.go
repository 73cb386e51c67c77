package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoHandler connects to uri and stores records at or above level in
// db.collection, indexed for lookups by time, request, order and SKU.
// Close the handler to flush and disconnect.
func NewMongoHandler(uri, db, collection string, level slog.Leveler) (*DocHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("bodega").
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(4))
	if err != nil {
		return nil, fmt.Errorf("log sink: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("log sink: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	indexes := []mongo.IndexModel{{Keys: bson.D{{Key: "time", Value: -1}}}}
	for _, key := range []string{"request_id", "order_id", "sku"} {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetSparse(true),
		})
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		L.Warn("log sink: create indexes", "error", err)
	}

	h := NewDocHandler(level, 50, 2*time.Second, func(ctx context.Context, docs []Doc) error {
		batch := make([]any, len(docs))
		for i := range docs {
			batch[i] = docs[i]
		}
		_, err := col.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		return err
	})
	h.OnClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	})
	return h, nil
}
