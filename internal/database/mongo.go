// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"fsic-records-api-server/config"
	"fsic-records-api-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Connect opens the client and pings the server.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// IndexPlan lists the indexes each collection needs.
func IndexPlan() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		repository.EstablishmentsCollection: {
			// FSIC numbers stay unique across active and archived records.
			{Keys: bson.D{{Key: "fsicNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_fsicNumber")},
			{Keys: bson.D{{Key: "dueDate.month", Value: 1}, {Key: "isActive", Value: 1}}, Options: options.Index().SetName("due_month_active")},
			{Keys: bson.D{{Key: "inspectionDate", Value: 1}}, Options: options.Index().SetName("inspectionDate")},
		},
		repository.UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
		},
	}
}

// EnsureIndexes creates the indexes in IndexPlan. Existing ones are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range IndexPlan() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
