package telemetry_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tristris/engine/telemetry"
)

type sample struct {
	State string  `json:"state"`
	Rate  float64 `json:"rate"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) sample {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var s sample
	require.NoError(t, json.Unmarshal(msg, &s))
	return s
}

func TestHubPublishes(t *testing.T) {
	hub := telemetry.NewHub()
	srv := httptest.NewServer(telemetry.Handler(hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(sample{State: "game", Rate: 59.5}))
	assert.Equal(t, sample{State: "game", Rate: 59.5}, read(t, conn))
}

func TestHubSendsLastValueOnConnect(t *testing.T) {
	hub := telemetry.NewHub()
	srv := httptest.NewServer(telemetry.Handler(hub))
	defer srv.Close()

	require.NoError(t, hub.Publish(sample{State: "title", Rate: 12}))
	conn := dial(t, srv)
	assert.Equal(t, sample{State: "title", Rate: 12}, read(t, conn))
}

func TestHubHealth(t *testing.T) {
	hub := telemetry.NewHub()
	srv := httptest.NewServer(telemetry.Handler(hub))
	defer srv.Close()

	require.NoError(t, hub.Publish(sample{State: "pause"}))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health struct {
		Clients int    `json:"clients"`
		Last    sample `json:"last"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, 0, health.Clients)
	assert.Equal(t, "pause", health.Last.State)
}

func TestHubClose(t *testing.T) {
	hub := telemetry.NewHub()
	srv := httptest.NewServer(telemetry.Handler(hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())
	require.NoError(t, hub.Publish(sample{State: "game"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubDropsClientsThatStopReading(t *testing.T) {
	hub := telemetry.NewHub()
	srv := httptest.NewServer(telemetry.Handler(hub))
	defer srv.Close()

	dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	// the client never reads, so its socket buffers and then its queue fill up
	payload := sample{State: strings.Repeat("x", 64<<10)}
	var slowest time.Duration
	for i := 0; i < 5000 && hub.Clients() > 0; i++ {
		start := time.Now()
		require.NoError(t, hub.Publish(payload))
		slowest = max(slowest, time.Since(start))
	}

	assert.Zero(t, hub.Clients())
	assert.Less(t, slowest, 500*time.Millisecond, "publishing never waits on a client")
}
