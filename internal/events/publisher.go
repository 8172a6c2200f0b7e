package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Publisher delivers an event to one subscriber.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// Bus fans an event out to every registered sink. A failing sink is logged
// and never fails the caller or the other sinks.
type Bus struct {
	mu       sync.RWMutex
	sinks    []sink
	observer func(sink string, err error)
}

type sink struct {
	name      string
	publisher Publisher
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers p under name.
func (b *Bus) Subscribe(name string, p Publisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink{name: name, publisher: p})
}

// Observe installs a callback invoked after each delivery attempt.
func (b *Bus) Observe(fn func(sink string, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	sinks := b.sinks
	observer := b.observer
	b.mu.RUnlock()

	for _, s := range sinks {
		err := s.publisher.Publish(ctx, event)
		if err != nil {
			log.WithFields(log.Fields{
				"sink":     s.name,
				"event":    event.Type,
				"event_id": event.ID,
			}).WithError(err).Warn("Failed to publish event")
		}
		if observer != nil {
			observer(s.name, err)
		}
	}
	return nil
}

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	Logger log.FieldLogger
}

func NewLogPublisher(logger log.FieldLogger) *LogPublisher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.Logger.WithFields(log.Fields{
		"event":      event.Type,
		"event_id":   event.ID,
		"company_id": event.CompanyID,
		"actor_id":   event.ActorID,
		"payload":    event.Payload,
	}).Info("domain event")
	return nil
}
