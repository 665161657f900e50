package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/identity-vault/pkg/dto"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func record(t *testing.T, topic string) []byte {
	t.Helper()
	data, err := json.Marshal(dto.RecordEvent{Topic: topic, Data: map[string]string{"k": topic}, Timestamp: time.Now()})
	require.NoError(t, err)
	return data
}

func TestTopicOf(t *testing.T) {
	assert.Equal(t, "access", topicOf([]byte(`{"topic":"access","data":{}}`)))
	assert.Equal(t, "", topicOf([]byte(`not json`)))
}

func TestHub_TopicFilter(t *testing.T) {
	hub, url := startHub(t)

	all := dial(t, url)
	accessOnly := dial(t, url+"?topic=access")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(record(t, "labels"))
	hub.Broadcast(record(t, "access"))

	require.NoError(t, accessOnly.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := accessOnly.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "access", topicOf(msg))

	require.NoError(t, all.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, first, err := all.ReadMessage()
	require.NoError(t, err)
	_, second, err := all.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "labels", topicOf(first))
	assert.Equal(t, "access", topicOf(second))
}

func TestHub_Disconnect(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	cancel()
	<-hub.done

	payload := record(t, "access")
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		// More than the broadcast buffer holds.
		for i := 0; i < 2*cap(hub.broadcast); i++ {
			hub.Broadcast(payload)
		}
	}()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked after the hub stopped")
	}
}

func TestHub_ConnectAfterStop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	cancel()
	<-hub.done

	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Zero(t, hub.ClientCount())
}
