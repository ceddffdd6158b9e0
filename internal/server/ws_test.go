package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/jobstore"
	"github.com/scopify/benchmark-agent/internal/pipeline"
)

func dialWS(t *testing.T, ts *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/research/ws/" + jobID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) broadcast.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev broadcast.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketSnapshotThenEvents(t *testing.T) {
	jobs := jobstore.New(16)
	events := broadcast.New()
	srv := New(&config.Config{}, jobs, events, &fakeRunner{}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	jobs.Create("job-1", "Acme", pipeline.TotalSteps())
	jobs.SetProcessing("job-1", "collector", 15)

	conn := dialWS(t, ts, "job-1")

	// Snapshot arrives first, reflecting current store state.
	snap := readEvent(t, conn)
	assert.Equal(t, "processing", snap.Status)
	assert.Equal(t, "Connected to status stream", snap.Message)
	assert.Equal(t, "collector", snap.Result["current_step"])
	assert.Equal(t, float64(15), snap.Result["progress"])

	// Wait for the subscriber registration to settle, then publish.
	require.Eventually(t, func() bool {
		return events.SubscriberCount("job-1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	events.Publish(broadcast.Event{
		JobID:   "job-1",
		Status:  broadcast.StatusProcessing,
		Message: "Analyzing competitive landscape",
		Result:  map[string]any{"step": "companies_products_analyst", "progress": 25},
	})

	ev := readEvent(t, conn)
	assert.Equal(t, broadcast.StatusProcessing, ev.Status)
	assert.Equal(t, "Analyzing competitive landscape", ev.Message)
	assert.Equal(t, "companies_products_analyst", ev.Result["step"])
}

func TestWebSocketUnknownJobStillStreams(t *testing.T) {
	jobs := jobstore.New(16)
	events := broadcast.New()
	srv := New(&config.Config{}, jobs, events, &fakeRunner{}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// No snapshot for an unknown job, but events still flow once published.
	conn := dialWS(t, ts, "ghost")

	require.Eventually(t, func() bool {
		return events.SubscriberCount("ghost") == 1
	}, 2*time.Second, 10*time.Millisecond)

	events.Publish(broadcast.Event{JobID: "ghost", Status: broadcast.StatusFailed, Message: "boom"})

	ev := readEvent(t, conn)
	assert.Equal(t, broadcast.StatusFailed, ev.Status)
}

func TestWebSocketFinalEventCarriesReport(t *testing.T) {
	jobs := jobstore.New(16)
	events := broadcast.New()
	srv := New(&config.Config{}, jobs, events, &fakeRunner{}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	jobs.Create("job-2", "Acme", pipeline.TotalSteps())
	conn := dialWS(t, ts, "job-2")
	_ = readEvent(t, conn) // snapshot

	require.Eventually(t, func() bool {
		return events.SubscriberCount("job-2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	events.Publish(broadcast.Event{
		JobID:  "job-2",
		Status: broadcast.StatusCompleted,
		Result: map[string]any{"report": "# Full Report", "progress": 100},
	})

	ev := readEvent(t, conn)
	assert.Equal(t, broadcast.StatusCompleted, ev.Status)
	assert.Equal(t, "# Full Report", ev.Result["report"])
}
