package reports

import (
	"cloud.google.com/go/civil"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func week() calendar.Window {
	return calendar.Window{Start: day("2025-01-06"), End: day("2025-01-12")}
}

func driver(name, personalID string, rating float64) *models.User {
	return &models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		PersonalID: personalID,
		Role:       models.RoleDriver,
		Rating:     rating,
		IsActive:   true,
	}
}

func task(d *models.User, date string, status models.TaskStatus, price float64) *models.Task {
	t := &models.Task{
		ID:            primitive.NewObjectID(),
		Title:         "Delivery",
		ScheduledDate: day(date),
		Status:        status,
		Price:         price,
	}
	if d != nil {
		id := d.ID
		t.AssignedToID = &id
	}
	return t
}

func timeOff(d *models.User, from, to string, status models.TimeOffStatus) *models.TimeOffRequest {
	r := &models.TimeOffRequest{UserID: d.ID, RequestDate: day(from), Status: status}
	if to != "" {
		end := day(to)
		r.EndDate = &end
	}
	return r
}
