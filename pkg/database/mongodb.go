package database

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Collection names.
const (
	TasksCollection      = "tasks"
	TimeOffCollection    = "time_off_requests"
	VehiclesCollection   = "vehicles"
	UsersCollection      = "users"
	DeductionsCollection = "deductions"
	CompaniesCollection  = "companies"
)

// Connect establishes a connection to MongoDB. The database name comes from
// the URI path, falling back to fallbackDB.
func Connect(ctx context.Context, mongoURI, fallbackDB string) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(mongoURI)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI).SetRegistry(Registry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := cs.Database
	if dbName == "" {
		dbName = fallbackDB
	}
	log.WithField("database", dbName).Info("Connected to MongoDB")

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Warn("Failed to create indexes")
	}

	return db, nil
}

// Collection opens name with the date-aware registry.
func Collection(db *mongo.Database, name string) *mongo.Collection {
	return db.Collection(name, options.Collection().SetRegistry(Registry()))
}

// EnsureIndexes creates the indexes backing company-scoped queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		TasksCollection: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "scheduled_date", Value: 1}, {Key: "scheduled_time", Value: 1}}},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "assigned_to_id", Value: 1}, {Key: "scheduled_date", Value: 1}}},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "batch_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		TimeOffCollection: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "request_date", Value: 1}}},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		VehiclesCollection: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "plate", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "assigned_to_id", Value: 1}}},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "personal_id", Value: 1}}},
		},
		DeductionsCollection: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	var firstErr error
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			log.WithError(err).WithField("collection", name).Warn("Failed to create indexes")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Disconnect closes the MongoDB connection
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	log.Info("Disconnected from MongoDB")
	return nil
}

// Health checks the database connection health
func Health(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.Client().Ping(ctx, nil)
}
