package repository

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func taskDoc(id, companyID primitive.ObjectID, status models.TaskStatus, date string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "company_id", Value: companyID},
		{Key: "title", Value: "Depot run"},
		{Key: "scheduled_date", Value: date},
		{Key: "scheduled_time", Value: "08:30"},
		{Key: "price", Value: 42.5},
		{Key: "status", Value: string(status)},
	}
}

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	companyID := primitive.NewObjectID()

	mt.Run("Create assigns id", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task, err := repo.Create(context.Background(), &models.Task{
			CompanyID:     companyID,
			Title:         "Depot run",
			ScheduledDate: civil.Date{Year: 2025, Month: time.January, Day: 6},
			Status:        models.TaskPending,
		})
		require.NoError(mt, err)
		assert.False(mt, task.ID.IsZero())
	})

	mt.Run("FindByID decodes date-only fields", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myfleet.tasks", mtest.FirstBatch,
			taskDoc(id, companyID, models.TaskPending, "2025-01-08")))

		task, err := repo.FindByID(context.Background(), companyID, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, civil.Date{Year: 2025, Month: time.January, Day: 8}, task.ScheduledDate)
		assert.Equal(mt, models.TaskPending, task.Status)
	})

	mt.Run("FindByID missing is NotFound", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myfleet.tasks", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), companyID, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("FindByID malformed id is NotFound", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		_, err := repo.FindByID(context.Background(), companyID, "nope")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("List filters by window and status", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myfleet.tasks", mtest.FirstBatch,
			taskDoc(primitive.NewObjectID(), companyID, models.TaskCompleted, "2025-01-06"),
			taskDoc(primitive.NewObjectID(), companyID, models.TaskCompleted, "2025-01-07"),
		))

		tasks, err := repo.List(context.Background(), models.TaskFilter{
			CompanyID: companyID,
			StartDate: civil.Date{Year: 2025, Month: time.January, Day: 5},
			EndDate:   civil.Date{Year: 2025, Month: time.January, Day: 11},
			Statuses:  []models.TaskStatus{models.TaskCompleted},
		})
		require.NoError(mt, err)
		assert.Len(mt, tasks, 2)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "2025-01-05", filter.Lookup("scheduled_date", "$gte").StringValue())
		assert.Equal(mt, "2025-01-11", filter.Lookup("scheduled_date", "$lte").StringValue())
	})

	mt.Run("Transition guards on expected status", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id := primitive.NewObjectID()
		driver := primitive.NewObjectID()
		doc := append(taskDoc(id, companyID, models.TaskAccepted, "2025-01-06"), bson.E{Key: "assigned_to_id", Value: driver})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		task, err := repo.Transition(context.Background(), TransitionParams{
			CompanyID: companyID,
			TaskID:    id,
			From:      models.TaskPending,
			To:        models.TaskAccepted,
			ClaimFor:  &driver,
			At:        time.Now(),
		})
		require.NoError(mt, err)
		assert.Equal(mt, models.TaskAccepted, task.Status)

		query := mt.GetStartedEvent().Command.Lookup("query").Document()
		assert.Equal(mt, "PENDING", query.Lookup("status").StringValue())
	})

	mt.Run("Transition without match is a conflict", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		driver := primitive.NewObjectID()
		_, err := repo.Transition(context.Background(), TransitionParams{
			CompanyID:      companyID,
			TaskID:         primitive.NewObjectID(),
			From:           models.TaskAccepted,
			To:             models.TaskCancelled,
			ExpectAssignee: &driver,
			At:             time.Now(),
		})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("Delete missing is NotFound", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), companyID, primitive.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}
