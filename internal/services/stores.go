package services

import (
	"context"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces mirror the repository methods each service needs.

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	Transition(ctx context.Context, p repository.TransitionParams) (*models.Task, error)
	UpdateFields(ctx context.Context, companyID, id primitive.ObjectID, allowed []models.TaskStatus, set bson.M, unset []string) (*models.Task, error)
	Delete(ctx context.Context, companyID, id primitive.ObjectID) error
}

type UserStore interface {
	FindByID(ctx context.Context, companyID, id primitive.ObjectID) (*models.User, error)
	ListDrivers(ctx context.Context, companyID primitive.ObjectID, includeInactive bool) ([]*models.User, error)
	ApplyRatingPenalty(ctx context.Context, companyID, id primitive.ObjectID, penalty float64, bounds models.RatingBounds) (*models.User, error)
}

type CompanyStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)
}

type TimeOffStore interface {
	Create(ctx context.Context, req *models.TimeOffRequest) (*models.TimeOffRequest, error)
	FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.TimeOffRequest, error)
	List(ctx context.Context, filter models.TimeOffFilter) ([]*models.TimeOffRequest, error)
	Review(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M) (*models.TimeOffRequest, error)
	Update(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M, unset []string) (*models.TimeOffRequest, error)
	Delete(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus) error
}

type VehicleStore interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Vehicle, error)
	FindByPlate(ctx context.Context, companyID primitive.ObjectID, plate string) (*models.Vehicle, error)
	List(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error)
	UpdateMileage(ctx context.Context, companyID, id primitive.ObjectID, mileage int, set bson.M) (*models.Vehicle, error)
	Update(ctx context.Context, companyID, id primitive.ObjectID, expect bson.M, set bson.M, unset []string) (*models.Vehicle, error)
	Delete(ctx context.Context, companyID, id primitive.ObjectID) error
}

type DeductionStore interface {
	Create(ctx context.Context, d *models.Deduction) (*models.Deduction, error)
	FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Deduction, error)
	List(ctx context.Context, filter models.DeductionFilter) ([]*models.Deduction, error)
	Replace(ctx context.Context, d *models.Deduction) (*models.Deduction, error)
	Delete(ctx context.Context, companyID, id primitive.ObjectID) error
}

var (
	_ TaskStore      = (*repository.TaskRepository)(nil)
	_ UserStore      = (*repository.UserRepository)(nil)
	_ CompanyStore   = (*repository.CompanyRepository)(nil)
	_ TimeOffStore   = (*repository.TimeOffRepository)(nil)
	_ VehicleStore   = (*repository.VehicleRepository)(nil)
	_ DeductionStore = (*repository.DeductionRepository)(nil)
)
