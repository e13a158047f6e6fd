package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"station_queue/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHub(t *testing.T) (*Hub, *httptest.Server, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	var subscribed int32
	r := gin.New()
	r.GET("/ws/:channel", func(c *gin.Context) {
		hub.Serve(c, c.Param("channel"), func() { atomic.AddInt32(&subscribed, 1) })
	})
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return hub, ts, &subscribed
}

func dial(t *testing.T, ts *httptest.Server, channel string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + channel
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "Ошибка подключения к WS")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToChannelSubscribers(t *testing.T) {
	hub, ts, subscribed := setupHub(t)

	station := dial(t, ts, "station-s1")
	other := dial(t, ts, "station-s2")
	require.Eventually(t, func() bool {
		return hub.Subscribers("station-s1") == 1 && hub.Subscribers("station-s2") == 1 &&
			atomic.LoadInt32(subscribed) == 2
	}, 2*time.Second, 10*time.Millisecond)

	err := hub.Publish(context.Background(), notify.Message{
		Channel: "station-s1",
		Event:   notify.EventPopped,
		Data:    notify.PoppedPayload{StationID: "s1", ParticipantID: "a"},
	})
	require.NoError(t, err)

	station.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := station.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения")
	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "popped", msg["event"])
	assert.Equal(t, "station-s1", msg["channel"])

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "Чужой канал не должен получать сообщение")
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub, _, _ := setupHub(t)

	err := hub.Publish(context.Background(), notify.Message{Channel: "participant-nobody"})
	assert.NoError(t, err)
}

func TestHubUnregistersClosedClient(t *testing.T) {
	hub, ts, _ := setupHub(t)

	conn := dial(t, ts, "participant-p1")
	require.Eventually(t, func() bool { return hub.Subscribers("participant-p1") == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("participant-p1") == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	err := hub.Publish(context.Background(), notify.Message{Channel: "station-s1"})
	assert.ErrorIs(t, err, errHubStopped)
}
