package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
)

func TestNew(t *testing.T) {
	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.FixedZone("X", 3600))
	e := New(TaskCancelled, "c1", "d1", at, TaskCancelledPayload{TaskID: "t1", Penalty: 0.1})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TaskCancelled, e.Type)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())
	assert.True(t, e.OccurredAt.Equal(at))
}

func TestBus_FanOutSurvivesFailingSink(t *testing.T) {
	bus := NewBus()

	var got []Type
	bus.Subscribe("broken", PublisherFunc(func(context.Context, Event) error {
		return errors.New("boom")
	}))
	bus.Subscribe("recorder", PublisherFunc(func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	}))

	outcomes := map[string]error{}
	bus.Observe(func(sink string, err error) { outcomes[sink] = err })

	err := bus.Publish(context.Background(), New(TaskCompleted, "c1", "d1", time.Now(), nil))
	require.NoError(t, err)
	assert.Equal(t, []Type{TaskCompleted}, got)
	assert.Error(t, outcomes["broken"])
	assert.NoError(t, outcomes["recorder"])
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.JSONFormatter{})

	p := NewLogPublisher(logger)
	require.NoError(t, p.Publish(context.Background(), New(TimeOffApproved, "c1", "a1", time.Now(), nil)))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "TimeOffApproved", line["event"])
	assert.Equal(t, "c1", line["company_id"])
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client := redis.Wrap(rc)
	defer client.Close()

	publisher := NewRedisPublisher(client, "")
	assert.Equal(t, "fleet:events:c1", publisher.Channel("c1"))

	ctx := context.Background()
	sub := rc.Subscribe(ctx, publisher.Channel("c1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event := New(TaskCancelled, "c1", "d1", time.Now(), TaskCancelledPayload{TaskID: "t1", DriverID: "d1", Penalty: 0.1, NewRating: 4.9})
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-sub.Channel():
		var decoded Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, TaskCancelled, decoded.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
