package event

import (
	"testing"
	"time"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	first := make(chan any, 1)
	second := make(chan any, 1)
	bus.Subscribe(EventCodelistCreated, func(payload any) { first <- payload })
	bus.Subscribe(EventCodelistCreated, func(payload any) { second <- payload })

	sent := ChangePayload{EntityType: "VoltageLevel", EntityCode: "VN", ChangeType: "CREATE"}
	bus.Publish(EventCodelistCreated, sent)

	for name, ch := range map[string]chan any{"first": first, "second": second} {
		select {
		case payload := <-ch:
			got, ok := payload.(ChangePayload)
			if !ok || got.EntityCode != "VN" {
				t.Fatalf("%s subscriber got %v", name, payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber never received the event", name)
		}
	}
}

func TestBusIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewBus()

	received := make(chan any, 1)
	bus.Subscribe(EventCodelistDeleted, func(payload any) { received <- payload })

	bus.Publish(EventCodelistCreated, ChangePayload{EntityCode: "NN"})

	select {
	case payload := <-received:
		t.Fatalf("subscriber for another event got %v", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewBus()
	bus.Publish(EventClassificationExpired, ExpiredPayload{EntityCode: "1.1"})
}

func TestBusRejectsBlankEventNames(t *testing.T) {
	bus := NewBus()

	received := make(chan any, 1)
	bus.Subscribe("   ", func(payload any) { received <- payload })
	bus.Publish("   ", ChangePayload{})

	select {
	case <-received:
		t.Fatal("blank event name must not register a handler")
	case <-time.After(50 * time.Millisecond):
	}
}
