package sse

import (
	"testing"
	"time"
)

func receiveEvent(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case event := <-client.Ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	first := NewClient("first")
	second := NewClient("second")
	hub.Register(first)
	hub.Register(second)

	sent := NewEvent(EventCodelistChange, map[string]string{"entity_type": "VoltageLevel"})
	hub.Broadcast(sent)

	for _, client := range []*Client{first, second} {
		got := receiveEvent(t, client)
		if got.ID != sent.ID || got.Type != EventCodelistChange {
			t.Fatalf("client %s got %+v, want id %d", client.ID, got, sent.ID)
		}
	}
}

func TestHubRegisterReplacesClientWithSameID(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	old := NewClient("dup")
	hub.Register(old)
	hub.Register(NewClient("dup"))

	select {
	case <-old.Done:
	case <-time.After(time.Second):
		t.Fatal("replaced client must be closed")
	}
	if hub.ConnectedCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ConnectedCount())
	}
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	client := NewClient("leaving")
	hub.Register(client)
	hub.Unregister(client.ID)

	select {
	case <-client.Done:
	case <-time.After(time.Second):
		t.Fatal("unregistered client must be closed")
	}
	if hub.ConnectedCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ConnectedCount())
	}
}

func TestHubSinceReplaysNewerEvents(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	first := NewEvent(EventCodelistChange, map[string]string{"code": "VN"})
	second := NewEvent(EventCodelistChange, map[string]string{"code": "NN"})
	hub.Broadcast(first)
	hub.Broadcast(second)

	replayed := hub.Since(first.ID)
	if len(replayed) != 1 {
		t.Fatalf("expected 1 replayed event, got %d", len(replayed))
	}
	if replayed[0].ID != second.ID {
		t.Fatalf("expected event %d, got %d", second.ID, replayed[0].ID)
	}

	all := hub.Since(0)
	if len(all) < 2 {
		t.Fatalf("expected at least 2 buffered events, got %d", len(all))
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	slow := NewClient("slow")
	// Shrink the buffer so the full-streak path triggers without flooding.
	slow.Ch = make(chan Event, 1)
	hub.Register(slow)

	for i := 0; i < backpressureFullLimit+2; i++ {
		hub.Broadcast(NewEvent(EventCodelistChange, map[string]int{"seq": i}))
	}

	select {
	case <-slow.Done:
	case <-time.After(time.Second):
		t.Fatal("slow client must be disconnected after repeated full dispatches")
	}
	if hub.ConnectedCount() != 0 {
		t.Fatalf("expected slow client removed, got %d connected", hub.ConnectedCount())
	}
}

func TestReplayBufferEvictsOldestWhenFull(t *testing.T) {
	buf := newReplayBuffer(3)

	events := make([]Event, 4)
	for i := range events {
		events[i] = NewEvent(EventCodelistChange, map[string]int{"seq": i})
		buf.push(events[i])
	}

	kept := buf.since(0)
	if len(kept) != 3 {
		t.Fatalf("expected capacity-bound replay of 3, got %d", len(kept))
	}
	if kept[0].ID != events[1].ID || kept[2].ID != events[3].ID {
		t.Fatalf("expected oldest event evicted, got ids %d..%d", kept[0].ID, kept[2].ID)
	}
}
