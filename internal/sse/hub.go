package sse

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cermakludek/legislative-enums-sub000/internal/metrics"
)

const (
	heartbeatInterval     = 30 * time.Second
	backpressureFullLimit = 5
)

// Hub fans codelist change events out to every connected subscriber. All
// events are broadcast; there is no per-user routing in the change feed.
// Slow consumers are dropped after repeated full-buffer dispatches so one
// stalled connection cannot pin event delivery for the rest.
type Hub struct {
	clients   sync.Map
	replayBuf *replayBuffer

	logger *zap.Logger
	stopCh chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := &Hub{
		replayBuf: newReplayBuffer(defaultReplayCapacity),
		logger:    logger,
		stopCh:    make(chan struct{}),
	}

	go hub.startHeartbeat()

	return hub
}

func (h *Hub) Register(client *Client) {
	if h == nil || client == nil || client.ID == "" {
		return
	}

	if current, loaded := h.clients.Load(client.ID); loaded {
		if oldClient, ok := current.(*Client); ok && oldClient != client {
			oldClient.Close()
		}
	}

	h.clients.Store(client.ID, client)
	metrics.SetSSEClients(h.ConnectedCount())
}

func (h *Hub) Unregister(clientID string) {
	if h == nil || clientID == "" {
		return
	}

	value, loaded := h.clients.LoadAndDelete(clientID)
	if !loaded {
		return
	}

	if client, ok := value.(*Client); ok {
		client.Close()
	}
	metrics.SetSSEClients(h.ConnectedCount())
}

func (h *Hub) Broadcast(event Event) {
	if h == nil {
		return
	}

	h.replayBuf.push(event)
	h.clients.Range(func(_, value interface{}) bool {
		if client, ok := value.(*Client); ok {
			h.dispatch(client, event)
		}
		return true
	})
}

// Since returns buffered events newer than lastID for reconnect replay.
func (h *Hub) Since(lastID int64) []Event {
	if h == nil {
		return nil
	}
	return h.replayBuf.since(lastID)
}

func (h *Hub) ConnectedCount() int {
	if h == nil {
		return 0
	}

	count := 0
	h.clients.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (h *Hub) Close() {
	if h == nil {
		return
	}

	select {
	case <-h.stopCh:
		return
	default:
		close(h.stopCh)
	}
}

func (h *Hub) dispatch(client *Client, event Event) {
	if client == nil {
		return
	}

	select {
	case <-client.Done:
		return
	case client.Ch <- event:
		client.markDispatched()
		return
	default:
		streak := client.markFull()
		h.logger.Warn("drop change-feed event due to full buffer",
			zap.String("client_id", client.ID),
			zap.String("type", event.Type),
			zap.Int32("full_streak", streak),
		)
		if streak >= backpressureFullLimit {
			h.logger.Warn("disconnect slow change-feed client",
				zap.String("client_id", client.ID),
			)
			h.Unregister(client.ID)
		}
	}
}

func (h *Hub) startHeartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case now := <-ticker.C:
			h.Broadcast(NewEvent(EventHeartbeat, map[string]interface{}{
				"ts": now.UTC().Format(time.RFC3339Nano),
			}))
		}
	}
}
