package repository

import (
	"context"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CompanyRepository struct {
	collection *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{
		collection: database.Collection(db, database.CompaniesCollection),
	}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var company models.Company
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&company); err != nil {
		return nil, notFound("company", id, err)
	}
	return &company, nil
}
