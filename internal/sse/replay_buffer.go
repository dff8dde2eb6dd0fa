package sse

import "sync"

const defaultReplayCapacity = 1000

// replayBuffer keeps the most recent events so a reconnecting subscriber can
// resume from its Last-Event-ID instead of missing changes.
type replayBuffer struct {
	mu       sync.RWMutex
	capacity int
	items    []Event
	start    int
	size     int
}

func newReplayBuffer(capacity int) *replayBuffer {
	if capacity <= 0 {
		capacity = defaultReplayCapacity
	}

	return &replayBuffer{
		capacity: capacity,
		items:    make([]Event, capacity),
	}
}

func (b *replayBuffer) push(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size < b.capacity {
		b.items[(b.start+b.size)%b.capacity] = event
		b.size++
		return
	}

	b.items[b.start] = event
	b.start = (b.start + 1) % b.capacity
}

// since returns all buffered events with an id greater than lastID, oldest
// first. lastID <= 0 returns everything buffered.
func (b *replayBuffer) since(lastID int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, 0, b.size)
	for i := 0; i < b.size; i++ {
		event := b.items[(b.start+i)%b.capacity]
		if event.ID > lastID {
			out = append(out, event)
		}
	}

	return out
}
