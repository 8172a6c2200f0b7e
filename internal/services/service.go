// Package services holds the scheduling core: task and time-off lifecycles,
// recurring generation, vehicle mileage, deductions and report assembly.
// Every operation takes the acting user and is scoped to that user's company.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/config"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/metrics"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/batch"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Policy carries the tunable business rules.
type Policy struct {
	CancelPenalty    float64
	RejectPenalty    float64
	Rating           models.RatingBounds
	Location         *time.Location
	AdminWeekStart   calendar.WeekStart
	DriverWeekStart  calendar.WeekStart
	RecurringMaxDays int
	ReportMaxDays    int
}

func DefaultPolicy() Policy {
	return Policy{
		CancelPenalty:    0.1,
		Rating:           models.DefaultRatingBounds(),
		Location:         time.UTC,
		AdminWeekStart:   calendar.WeekStartsSunday,
		DriverWeekStart:  calendar.WeekStartsMonday,
		RecurringMaxDays: 366,
		ReportMaxDays:    366,
	}
}

// NewPolicy resolves the configured timezone and week starts.
func NewPolicy(cfg config.PolicyConfig) (Policy, error) {
	p := DefaultPolicy()
	p.CancelPenalty = cfg.CancelPenalty
	p.RejectPenalty = cfg.RejectPenalty
	p.Rating = models.RatingBounds{Floor: cfg.RatingFloor, Ceiling: cfg.RatingCeiling}
	if cfg.RecurringMaxDays > 0 {
		p.RecurringMaxDays = cfg.RecurringMaxDays
	}
	if cfg.ReportMaxDays > 0 {
		p.ReportMaxDays = cfg.ReportMaxDays
	}

	if cfg.DefaultTimezone != "" {
		loc, err := time.LoadLocation(cfg.DefaultTimezone)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid default timezone: %w", err)
		}
		p.Location = loc
	}

	var err error
	if cfg.AdminWeekStart != "" {
		if p.AdminWeekStart, err = calendar.ParseWeekStart(cfg.AdminWeekStart); err != nil {
			return Policy{}, fmt.Errorf("invalid admin week start: %w", err)
		}
	}
	if cfg.DriverWeekStart != "" {
		if p.DriverWeekStart, err = calendar.ParseWeekStart(cfg.DriverWeekStart); err != nil {
			return Policy{}, fmt.Errorf("invalid driver week start: %w", err)
		}
	}
	return p, nil
}

// Options are the collaborators shared by every service. Zero values fall
// back to the system clock, a discarding publisher and DefaultPolicy.
type Options struct {
	Clock   calendar.Clock
	Events  events.Publisher
	Metrics *metrics.Metrics
	Policy  *Policy
	// Batch tunes recurring creation; nil means batch.DefaultConfig.
	Batch *batch.Config
}

type core struct {
	clock     calendar.Clock
	events    events.Publisher
	metrics   *metrics.Metrics
	policy    Policy
	companies CompanyStore
}

func newCore(companies CompanyStore, opts Options) core {
	c := core{
		clock:     opts.Clock,
		events:    opts.Events,
		metrics:   opts.Metrics,
		policy:    DefaultPolicy(),
		companies: companies,
	}
	if c.clock == nil {
		c.clock = calendar.SystemClock{}
	}
	if c.events == nil {
		c.events = events.Discard
	}
	if opts.Policy != nil {
		c.policy = *opts.Policy
	}
	if c.policy.Location == nil {
		c.policy.Location = time.UTC
	}
	return c
}

func (c *core) now() time.Time {
	return c.clock.Now().UTC()
}

// location returns the company's timezone, or the policy default when the
// company has none or it cannot be loaded.
func (c *core) location(ctx context.Context, companyID primitive.ObjectID) *time.Location {
	if c.companies == nil {
		return c.policy.Location
	}
	company, err := c.companies.FindByID(ctx, companyID)
	if err != nil || company.Timezone == "" {
		return c.policy.Location
	}
	loc, err := time.LoadLocation(company.Timezone)
	if err != nil {
		log.WithFields(log.Fields{
			"company_id": companyID.Hex(),
			"timezone":   company.Timezone,
		}).Warn("Unknown company timezone, using default")
		return c.policy.Location
	}
	return loc
}

func (c *core) today(ctx context.Context, companyID primitive.ObjectID) civil.Date {
	return calendar.Today(c.clock, c.location(ctx, companyID))
}

// publish hands event to the subscribers. Failures are logged and never
// reach the caller.
func (c *core) publish(ctx context.Context, actor models.Actor, eventType events.Type, payload interface{}) {
	event := events.New(eventType, actor.CompanyID.Hex(), actor.UserID.Hex(), c.now(), payload)
	if err := c.events.Publish(ctx, event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"event_id":   event.ID,
		}).Warn("Failed to publish event")
	}
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrPermissionDenied)
	}
	return nil
}

func requireDriver(actor models.Actor) error {
	if !actor.IsDriver() {
		return fmt.Errorf("%w: driver role required", models.ErrPermissionDenied)
	}
	return nil
}

var validate = validator.New()

// validateRequest runs struct tag validation and reports failures as
// ErrValidation naming each offending field.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", models.ErrValidation, err)
}

func parseDate(field, value string) (civil.Date, error) {
	d, err := calendar.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", models.ErrValidation, field)
	}
	return d, nil
}

// parseWindow turns an inclusive start/end pair into a window.
func parseWindow(start, end string) (calendar.Window, error) {
	from, err := parseDate("startDate", start)
	if err != nil {
		return calendar.Window{}, err
	}
	to, err := parseDate("endDate", end)
	if err != nil {
		return calendar.Window{}, err
	}
	w, err := calendar.NewWindow(from, to)
	if err != nil {
		return calendar.Window{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return w, nil
}

// parseRefID parses an id carried in a request body. Malformed ids are a
// validation failure rather than a missing record.
func parseRefID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", models.ErrValidation, field)
	}
	return oid, nil
}

// parsePathID parses an id addressing a record; malformed ids cannot exist.
func parsePathID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
	}
	return oid, nil
}
