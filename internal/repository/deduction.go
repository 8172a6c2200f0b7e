package repository

import (
	"context"
	"fmt"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeductionRepository struct {
	collection *mongo.Collection
}

func NewDeductionRepository(db *mongo.Database) *DeductionRepository {
	return &DeductionRepository{
		collection: database.Collection(db, database.DeductionsCollection),
	}
}

func (r *DeductionRepository) Create(ctx context.Context, d *models.Deduction) (*models.Deduction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to insert deduction: %w", err)
	}

	d.ID = result.InsertedID.(primitive.ObjectID)
	return d, nil
}

func (r *DeductionRepository) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Deduction, error) {
	oid, err := parseID("deduction", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var d models.Deduction
	if err := r.collection.FindOne(ctx, scoped(companyID, oid)).Decode(&d); err != nil {
		return nil, notFound("deduction", oid, err)
	}
	return &d, nil
}

func (r *DeductionRepository) List(ctx context.Context, filter models.DeductionFilter) ([]*models.Deduction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{"company_id": filter.CompanyID}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": stringsOf(filter.Statuses)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query deductions: %w", err)
	}
	defer cursor.Close(ctx)

	deductions := []*models.Deduction{}
	if err := cursor.All(ctx, &deductions); err != nil {
		return nil, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return deductions, nil
}

func (r *DeductionRepository) Replace(ctx context.Context, d *models.Deduction) (*models.Deduction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, scoped(d.CompanyID, d.ID), d)
	if err != nil {
		return nil, fmt.Errorf("failed to update deduction: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: deduction %s", models.ErrNotFound, d.ID.Hex())
	}
	return d, nil
}

func (r *DeductionRepository) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, scoped(companyID, id))
	if err != nil {
		return fmt.Errorf("failed to delete deduction: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: deduction %s", models.ErrNotFound, id.Hex())
	}
	return nil
}
