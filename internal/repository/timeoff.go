package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TimeOffRepository struct {
	collection *mongo.Collection
}

func NewTimeOffRepository(db *mongo.Database) *TimeOffRepository {
	return &TimeOffRepository{
		collection: database.Collection(db, database.TimeOffCollection),
	}
}

func (r *TimeOffRepository) Create(ctx context.Context, req *models.TimeOffRequest) (*models.TimeOffRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to insert time-off request: %w", err)
	}

	req.ID = result.InsertedID.(primitive.ObjectID)
	return req, nil
}

func (r *TimeOffRepository) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.TimeOffRequest, error) {
	oid, err := parseID("time-off request", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var req models.TimeOffRequest
	if err := r.collection.FindOne(ctx, scoped(companyID, oid)).Decode(&req); err != nil {
		return nil, notFound("time-off request", oid, err)
	}
	return &req, nil
}

// List returns requests matching filter ordered by start date. When a window
// is given, a request matches if any of its days falls inside it.
func (r *TimeOffRepository) List(ctx context.Context, filter models.TimeOffFilter) ([]*models.TimeOffRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{"company_id": filter.CompanyID}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": stringsOf(filter.Statuses)}
	}
	if !calendar.IsZero(filter.To) {
		query["request_date"] = bson.M{"$lte": filter.To.String()}
	}
	if !calendar.IsZero(filter.From) {
		from := filter.From.String()
		query["$or"] = bson.A{
			bson.M{"end_date": bson.M{"$gte": from}},
			bson.M{"end_date": nil, "request_date": bson.M{"$gte": from}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query time-off requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []*models.TimeOffRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode time-off requests: %w", err)
	}
	return requests, nil
}

// Review sets status and notes only if the request still holds one of from.
func (r *TimeOffRepository) Review(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M) (*models.TimeOffRequest, error) {
	return r.update(ctx, companyID, id, from, set, nil)
}

// Update rewrites editable fields only if the request still holds one of from.
func (r *TimeOffRepository) Update(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M, unset []string) (*models.TimeOffRequest, error) {
	return r.update(ctx, companyID, id, from, set, unset)
}

func (r *TimeOffRepository) update(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M, unset []string) (*models.TimeOffRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := scoped(companyID, id)
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": stringsOf(from)}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.TimeOffRequest
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update time-off request: %w", err)
	}
	return &req, nil
}

func (r *TimeOffRepository) Delete(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := scoped(companyID, id)
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": stringsOf(from)}
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete time-off request: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrConflict
	}
	return nil
}
