package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"prodtrack/internal/events"
	"prodtrack/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_PublishesToEverySink(t *testing.T) {
	first, second := events.NewRecorder(), events.NewRecorder()
	fanout := events.Fanout{first, events.Discard, second}

	fanout.Publish(events.TaskStart, "payload")

	for _, r := range []*events.Recorder{first, second} {
		got := r.Events()
		require.Len(t, got, 1)
		assert.Equal(t, events.TaskStart, got[0].Name)
		assert.Equal(t, "payload", got[0].Payload)
	}
}

func TestRecorder_NamedAndReset(t *testing.T) {
	r := events.NewRecorder()
	r.Publish(events.TaskAssign, 1)
	r.Publish(events.TaskUnassign, 2)
	r.Publish(events.TaskAssign, 3)

	assigned := r.Named(events.TaskAssign)
	require.Len(t, assigned, 2)
	assert.Equal(t, 3, assigned[1].Payload)

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestLogSink_Fields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := events.LogSink{Logger: logger}
	taskID, personID := uuid.New(), uuid.New()

	sink.Publish(events.TaskAssign, events.Assignment{
		Task:   model.TaskSnapshot{ID: taskID},
		Person: model.Person{ID: personID},
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "task event emitted", entry.Message)
	assert.Equal(t, events.TaskAssign, entry.Data["event"])
	assert.Equal(t, taskID, entry.Data["task_id"])
	assert.Equal(t, personID, entry.Data["person_id"])
}

func TestWebhookSink_Delivers(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Header.Get("Content-Type") != "application/json" || json.NewDecoder(r.Body).Decode(&body) != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bodies <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	sink := events.NewWebhookSink(server.URL, time.Second, logger)
	taskID := uuid.New()

	sink.Publish(events.TaskStart, events.StatusChange{TaskAfter: model.TaskSnapshot{ID: taskID}})

	var received map[string]any
	select {
	case received = <-bodies:
	default:
		t.Fatal("webhook was not called")
	}
	assert.Equal(t, events.TaskStart, received["event"])
	payload := received["payload"].(map[string]any)
	after := payload["task_after"].(map[string]any)
	assert.Equal(t, taskID.String(), after["id"])
	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, gobreaker.StateClosed, sink.State())
}

func TestWebhookSink_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	sink := events.NewWebhookSink(server.URL, time.Second, logger)

	for i := 0; i < 4; i++ {
		sink.Publish(events.TaskStart, nil)
	}
	assert.Equal(t, gobreaker.StateOpen, sink.State())
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

	// Открытый breaker не пропускает запросы к серверу
	sink.Publish(events.TaskStart, nil)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 5, warnings)
}

func TestWebhookSink_ClientErrorIsFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	sink := events.NewWebhookSink(server.URL, time.Second, logger)

	sink.Publish(events.TaskAssign, nil)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "event webhook delivery failed", entry.Message)

	for i := 0; i < 3; i++ {
		sink.Publish(events.TaskAssign, nil)
	}
	assert.Equal(t, gobreaker.StateOpen, sink.State())
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}
