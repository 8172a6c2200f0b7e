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

type VehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{
		collection: database.Collection(db, database.VehiclesCollection),
	}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: plate %s already registered", models.ErrValidation, vehicle.Plate)
		}
		return nil, fmt.Errorf("failed to insert vehicle: %w", err)
	}

	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle.Refresh(), nil
}

func (r *VehicleRepository) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Vehicle, error) {
	oid, err := parseID("vehicle", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var vehicle models.Vehicle
	if err := r.collection.FindOne(ctx, scoped(companyID, oid)).Decode(&vehicle); err != nil {
		return nil, notFound("vehicle", oid, err)
	}
	return vehicle.Refresh(), nil
}

func (r *VehicleRepository) FindByPlate(ctx context.Context, companyID primitive.ObjectID, plate string) (*models.Vehicle, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"company_id": companyID, "plate": plate}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load vehicle by plate: %w", err)
	}
	return vehicle.Refresh(), nil
}

func (r *VehicleRepository) List(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{"company_id": filter.CompanyID}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": stringsOf(filter.Statuses)}
	}
	if filter.AssignedToID != nil {
		query["assigned_to_id"] = *filter.AssignedToID
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "plate", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	vehicles := []*models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}
	for _, v := range vehicles {
		v.Refresh()
	}
	return vehicles, nil
}

// UpdateMileage raises current_mileage to mileage only if the stored value is
// not greater, so concurrent writers can never move the odometer backwards.
// ErrConflict means the stored mileage exceeds mileage.
func (r *VehicleRepository) UpdateMileage(ctx context.Context, companyID, id primitive.ObjectID, mileage int, set bson.M) (*models.Vehicle, error) {
	filter := scoped(companyID, id)
	filter["current_mileage"] = bson.M{"$lte": mileage}

	fields := bson.M{"current_mileage": mileage}
	for k, v := range set {
		fields[k] = v
	}
	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": fields})
}

// Update applies set/unset when the stored document still matches expect.
func (r *VehicleRepository) Update(ctx context.Context, companyID, id primitive.ObjectID, expect bson.M, set bson.M, unset []string) (*models.Vehicle, error) {
	filter := scoped(companyID, id)
	for k, v := range expect {
		filter[k] = v
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *VehicleRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Vehicle, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var vehicle models.Vehicle
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&vehicle); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConflict
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: plate already registered", models.ErrValidation)
		}
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return vehicle.Refresh(), nil
}

func (r *VehicleRepository) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, scoped(companyID, id))
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: vehicle %s", models.ErrNotFound, id.Hex())
	}
	return nil
}
