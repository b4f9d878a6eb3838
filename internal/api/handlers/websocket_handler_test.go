package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsic-records-api-server/internal/api/middleware"
	"fsic-records-api-server/internal/logger"
	"fsic-records-api-server/internal/socket"
)

func wsServer(t *testing.T, hub *socket.Hub, wait time.Duration) string {
	t.Helper()
	h := &WebSocketHandler{Hub: hub, Establishments: &stubEstablishments{}, Log: logger.Nop(), PongWait: wait}
	r := gin.New()
	r.GET("/ws", middleware.Authenticate("authToken", identity), h.ServeWs)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestSilentClientOutlivesReadDeadline(t *testing.T) {
	hub := socket.NewHub(logger.Nop())
	wait := 300 * time.Millisecond
	url := wsServer(t, hub, wait)

	header := http.Header{"Cookie": {"authToken=sealed-token"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	// The client never writes. Reading lets gorilla answer the server's pings.
	frames := make(chan []byte, 4)
	go func() {
		defer close(frames)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- data
		}
	}()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	time.Sleep(3 * wait)
	require.Equal(t, 1, hub.Len(), "idle client was dropped")

	hub.Broadcast("establishment_updated", map[string]string{"id": "e1"})

	select {
	case data, ok := <-frames:
		require.True(t, ok, "connection closed before the broadcast arrived")
		var msg socket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "establishment_updated", msg.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast not received")
	}
}

func TestServeWsRequiresSession(t *testing.T) {
	hub := socket.NewHub(logger.Nop())
	url := wsServer(t, hub, 0)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, hub.Len())
}

func TestServeWsUnregistersOnClose(t *testing.T) {
	hub := socket.NewHub(logger.Nop())
	url := wsServer(t, hub, 0)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Cookie": {"authToken=sealed-token"}})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}
