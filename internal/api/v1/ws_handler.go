package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	"github.com/cermakludek/legislative-enums-sub000/internal/sse"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler serves the same change feed as the SSE endpoint over a
// websocket, for consumers that already hold a socket to the registry.
type WSHandler struct {
	hub *sse.Hub

	upgrader websocket.Upgrader
}

func NewWSHandler(hub *sse.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

func RegisterWSRoutes(router gin.IRoutes, hub *sse.Hub) {
	handler := NewWSHandler(hub)
	router.GET("/ws/changes", middleware.JWTAuth(), handler.Changes)
}

func (h *WSHandler) Changes(c *gin.Context) {
	if h.hub == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal, "change feed unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := sse.NewClient(uuid.NewString())
	h.hub.Register(client)

	defer func() {
		h.hub.Unregister(client.ID)
		_ = conn.Close()
	}()

	// Reader only drains control frames; the feed is one-way.
	go func() {
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				client.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-client.Done:
			return
		case event := <-client.Ch:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if writeErr := conn.WriteJSON(event); writeErr != nil {
				return
			}
		}
	}
}
