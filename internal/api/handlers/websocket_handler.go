// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"fsic-records-api-server/internal/api/middleware"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"
	"fsic-records-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Default wait for the next pong or message from the client.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The session cookie is SameSite=Strict, so cross-site pages never get here authenticated.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TodayLister supplies the alert pushed when a dashboard connects.
type TodayLister interface {
	InspectionsToday(ctx context.Context) ([]models.Establishment, error)
}

type WebSocketHandler struct {
	Hub            *socket.Hub
	Establishments TodayLister
	Log            zerolog.Logger
	// PongWait overrides pongWait when set. Pings go out at 9/10 of it.
	PongWait time.Duration
}

func (h *WebSocketHandler) pongWait() time.Duration {
	if h.PongWait > 0 {
		return h.PongWait
	}
	return pongWait
}

// ServeWs upgrades an authenticated request and keeps the connection until
// the client goes away.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	session := middleware.CurrentUser(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: "Authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	id := h.Hub.Register(conn, session.Username)
	defer func() {
		h.Hub.Unregister(id)
		conn.Close()
	}()

	h.pushInspectionsToday(c.Request.Context(), id)

	wait := h.pongWait()
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wait))
		return nil
	})
	// Replacing the default ping handler means answering the pong here.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(id, wait*9/10, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug().Err(err).Str("conn", id).Msg("unexpected websocket close")
			}
			return
		}
	}
}

// keepAlive pings the client until done closes or a ping fails. Dashboards
// never write, so the pongs are what keep the read deadline moving.
func (h *WebSocketHandler) keepAlive(id string, period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.Hub.Ping(id); err != nil {
				h.Log.Debug().Err(err).Str("conn", id).Msg("websocket ping failed")
				return
			}
		}
	}
}

func (h *WebSocketHandler) pushInspectionsToday(ctx context.Context, id string) {
	list, err := h.Establishments.InspectionsToday(ctx)
	if err != nil {
		h.Log.Warn().Err(err).Msg("could not load today's inspections")
		return
	}
	if len(list) == 0 {
		return
	}
	if err := h.Hub.Send(id, service.EventInspectionsToday, list); err != nil {
		h.Log.Warn().Err(err).Str("conn", id).Msg("could not push today's inspections")
	}
}
