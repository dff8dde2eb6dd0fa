package v1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	"github.com/cermakludek/legislative-enums-sub000/internal/sse"
)

type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

func RegisterSSERoutes(group *gin.RouterGroup, hub *sse.Hub) {
	handler := NewSSEHandler(hub)
	group.GET("/events", middleware.JWTAuth(), handler.Events)
}

func (h *SSEHandler) Events(c *gin.Context) {
	if h.hub == nil {
		response.Fail(c, 503, response.ErrInternal, "change feed unavailable")
		return
	}

	flusher, ok := c.Writer.(interface{ Flush() })
	if !ok {
		response.Fail(c, 500, response.ErrInternal, "stream unsupported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Connection", "keep-alive")
	c.Status(200)

	client := sse.NewClient(uuid.NewString())
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	for _, event := range h.hub.Since(parseLastEventID(c.GetHeader("Last-Event-ID"))) {
		if err := writeSSEEvent(c, event); err != nil {
			return
		}
		flusher.Flush()
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-client.Done:
			return
		case event := <-client.Ch:
			if err := writeSSEEvent(c, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// parseLastEventID tolerates anything a reconnecting browser might send;
// a missing or malformed header means replay from the start of the buffer.
func parseLastEventID(raw string) int64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func writeSSEEvent(c *gin.Context, event sse.Event) error {
	if _, err := fmt.Fprintf(c.Writer, "id: %d\n", event.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\n", event.Type); err != nil {
		return err
	}

	for _, line := range strings.Split(event.Data, "\n") {
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n", line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(c.Writer, "\n")
	return err
}
