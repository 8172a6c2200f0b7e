package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: database.Collection(db, database.UsersCollection),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, companyID, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, scoped(companyID, id)).Decode(&user); err != nil {
		return nil, notFound("user", id, err)
	}
	return &user, nil
}

// ListDrivers returns the company's drivers ordered by name. Inactive drivers
// are included only when includeInactive is set.
func (r *UserRepository) ListDrivers(ctx context.Context, companyID primitive.ObjectID, includeInactive bool) ([]*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"company_id": companyID, "role": string(models.RoleDriver)}
	if !includeInactive {
		filter["is_active"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer cursor.Close(ctx)

	drivers := []*models.User{}
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}
	return drivers, nil
}

// ApplyRatingPenalty subtracts penalty from the driver's rating in a single
// server-side update, rounding to two decimals and keeping it within bounds.
func (r *UserRepository) ApplyRatingPenalty(ctx context.Context, companyID, id primitive.ObjectID, penalty float64, bounds models.RatingBounds) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: bson.D{{Key: "$min", Value: bson.A{
				bounds.Ceiling,
				bson.D{{Key: "$max", Value: bson.A{
					bounds.Floor,
					bson.D{{Key: "$round", Value: bson.A{
						bson.D{{Key: "$subtract", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$rating", models.DefaultRating}}}, penalty}}},
						2,
					}}},
				}}},
			}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	filter := scoped(companyID, id)
	filter["role"] = string(models.RoleDriver)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: driver %s", models.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to apply rating penalty: %w", err)
	}
	return &user, nil
}
