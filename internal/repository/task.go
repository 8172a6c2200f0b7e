package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		collection: database.Collection(db, database.TasksCollection),
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = result.InsertedID.(primitive.ObjectID)
	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Task, error) {
	oid, err := parseID("task", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var task models.Task
	if err := r.collection.FindOne(ctx, scoped(companyID, oid)).Decode(&task); err != nil {
		return nil, notFound("task", oid, err)
	}
	return &task, nil
}

// List returns tasks matching filter ordered by scheduled date then time.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{"company_id": filter.CompanyID}
	var from, to string
	if !calendar.IsZero(filter.StartDate) {
		from = filter.StartDate.String()
	}
	if !calendar.IsZero(filter.EndDate) {
		to = filter.EndDate.String()
	}
	dateRange("scheduled_date", query, from, to)
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": stringsOf(filter.Statuses)}
	}
	if filter.AssignedToID != nil {
		query["assigned_to_id"] = *filter.AssignedToID
	} else if filter.Unassigned {
		query["assigned_to_id"] = bson.M{"$exists": false}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "scheduled_date", Value: 1},
		{Key: "scheduled_time", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// TransitionParams describes a compare-and-set status change.
type TransitionParams struct {
	CompanyID primitive.ObjectID
	TaskID    primitive.ObjectID
	// From is the status the task must hold at write time.
	From models.TaskStatus
	To   models.TaskStatus
	// ExpectAssignee, when set, must equal assigned_to_id at write time.
	// ClaimFor claims an unassigned task for the given driver.
	ExpectAssignee *primitive.ObjectID
	ClaimFor       *primitive.ObjectID
	At             time.Time
}

// Transition applies a status change only if the stored task still holds the
// expected status and assignee. ErrConflict means nothing was written.
func (r *TaskRepository) Transition(ctx context.Context, p TransitionParams) (*models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := scoped(p.CompanyID, p.TaskID)
	filter["status"] = string(p.From)
	switch {
	case p.ClaimFor != nil:
		filter["$or"] = bson.A{
			bson.M{"assigned_to_id": *p.ClaimFor},
			bson.M{"assigned_to_id": nil},
		}
	case p.ExpectAssignee != nil:
		filter["assigned_to_id"] = *p.ExpectAssignee
	}

	set := bson.M{"status": string(p.To), "updated_at": p.At}
	if p.ClaimFor != nil {
		set["assigned_to_id"] = *p.ClaimFor
	}
	update := bson.M{"$set": set}
	if p.To == models.TaskCompleted {
		set["completed_at"] = p.At
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to transition task: %w", err)
	}
	return &task, nil
}

// UpdateFields sets fields on a task whose status is one of allowed.
// ErrConflict means the status left the allowed set before the write.
func (r *TaskRepository) UpdateFields(ctx context.Context, companyID, id primitive.ObjectID, allowed []models.TaskStatus, set bson.M, unset []string) (*models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := scoped(companyID, id)
	filter["status"] = bson.M{"$in": stringsOf(allowed)}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, scoped(companyID, id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: task %s", models.ErrNotFound, id.Hex())
	}
	return nil
}
