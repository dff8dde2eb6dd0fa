package event

import (
	"strings"
	"sync"
	"time"
)

const (
	EventCodelistCreated       = "codelist.created"
	EventCodelistUpdated       = "codelist.updated"
	EventCodelistDeleted       = "codelist.deleted"
	EventClassificationExpired = "classification.expired"
)

// ChangePayload describes one committed codelist mutation. Published after
// the business write and the audit entry; subscribers must tolerate missing
// events (publish is fire-and-forget and never blocks or fails the mutation).
type ChangePayload struct {
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	EntityCode string    `json:"entity_code"`
	ChangeType string    `json:"change_type"`
	ChangedBy  string    `json:"changed_by"`
	Timestamp  time.Time `json:"timestamp"`
}

type ExpiredPayload struct {
	EntityID   int64     `json:"entity_id"`
	EntityCode string    `json:"entity_code"`
	ValidTo    time.Time `json:"valid_to"`
}

type Bus struct {
	handlers sync.Map
	mu       sync.Mutex
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(event string, handler func(payload any)) {
	if b == nil || handler == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := make([]func(payload any), 0, 1)
	if current, ok := b.handlers.Load(eventName); ok {
		if casted, valid := current.([]func(payload any)); valid {
			handlers = append(handlers, casted...)
		}
	}
	handlers = append(handlers, handler)
	b.handlers.Store(eventName, handlers)
}

func (b *Bus) Publish(event string, payload any) {
	if b == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	current, ok := b.handlers.Load(eventName)
	if !ok {
		return
	}

	handlers, ok := current.([]func(payload any))
	if !ok || len(handlers) == 0 {
		return
	}

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		go handler(payload)
	}
}
