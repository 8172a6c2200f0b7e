package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	TaskTransitions  *prometheus.CounterVec   // transition: accept|reject|complete|cancel, result: ok|noop|invalid|denied|conflict|error
	RecurringTasks   *prometheus.CounterVec   // result: created|failed
	ReportGeneration *prometheus.HistogramVec // report: activity|weekly|csv|pdf|xlsx
	MileageUpdates   *prometheus.CounterVec   // result: ok|invalid|denied|error
	EventsPublished  *prometheus.CounterVec   // sink, result
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TaskTransitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "myfleet_task_transitions_total",
			Help: "Task lifecycle transitions attempted, by outcome.",
		}, []string{"transition", "result"}),
		RecurringTasks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "myfleet_recurring_tasks_total",
			Help: "Tasks produced by recurring expansion, by outcome.",
		}, []string{"result"}),
		ReportGeneration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myfleet_report_generation_seconds",
			Help:    "Duration of report aggregation and rendering.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		MileageUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "myfleet_mileage_updates_total",
			Help: "Vehicle mileage updates, by outcome.",
		}, []string{"result"}),
		EventsPublished: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "myfleet_events_published_total",
			Help: "Domain events delivered to each sink, by outcome.",
		}, []string{"sink", "result"}),
	}
}

func (m *Metrics) Transition(transition, result string) {
	if m == nil {
		return
	}
	m.TaskTransitions.WithLabelValues(transition, result).Inc()
}

func (m *Metrics) Recurring(created, failed int) {
	if m == nil {
		return
	}
	m.RecurringTasks.WithLabelValues("created").Add(float64(created))
	m.RecurringTasks.WithLabelValues("failed").Add(float64(failed))
}

// ObserveReport records the time since start under report.
func (m *Metrics) ObserveReport(report string, start time.Time) {
	if m == nil {
		return
	}
	m.ReportGeneration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Mileage(result string) {
	if m == nil {
		return
	}
	m.MileageUpdates.WithLabelValues(result).Inc()
}

// EventPublished matches the events.Bus observer signature.
func (m *Metrics) EventPublished(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(sink, result).Inc()
}
