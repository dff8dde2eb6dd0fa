package sse

import (
	"encoding/json"
	"sync/atomic"
)

const (
	EventHeartbeat      = "heartbeat"
	EventCodelistChange = "codelist.change"
	EventSystemAlert    = "system.alert"
)

// Event is one frame of the change feed, shared by the SSE and WebSocket
// transports. IDs are a process-local monotonic sequence used for
// Last-Event-ID replay, not persisted anywhere.
type Event struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Data string `json:"data"`
}

var eventSeq int64

func NewEvent(eventType string, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}

	return Event{
		ID:   atomic.AddInt64(&eventSeq, 1),
		Type: eventType,
		Data: string(data),
	}
}
