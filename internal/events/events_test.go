package events

import (
	"encoding/json"
	"errors"
	"testing"

	"signalbot/internal/models"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe(EventPostbackRegistration, handler)

	payload := models.PostbackNotice{UserID: 42, Event: models.PostbackRegistration, Language: models.LangRU}
	err := bus.PublishJSON(EventPostbackRegistration, payload)
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventPostbackRegistration {
		t.Errorf("expected type %s, got %s", EventPostbackRegistration, received.Type)
	}

	var decoded models.PostbackNotice
	if err := received.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.UserID != 42 || decoded.Event != models.PostbackRegistration {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	if err := bus.Publish(&Event{Type: "event"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusHandlerErrorsDoNotStopOthers(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("telegram down")
	var called bool

	bus.Subscribe("event", func(_ *Event) error { return boom })
	bus.Subscribe("event", func(_ *Event) error { called = true; return nil })

	err := bus.Publish(&Event{Type: "event"})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined handler error, got %v", err)
	}
	if !called {
		t.Errorf("second handler must still run")
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	if err := bus.Publish(&Event{Type: "unknown"}); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
	err := bus.PublishJSON("unknown", nil)
	if err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}

	var nilBus *EventBus
	if err := nilBus.PublishJSON("unknown", 1); err != nil {
		t.Errorf("nil bus must be a no-op: %v", err)
	}
}

func TestNewJSONEvent(t *testing.T) {
	payload := BroadcastFinishedPayload{JobID: "job-1", Sent: 43, Errors: 2}
	event, err := NewJSONEvent(EventBroadcastFinished, payload)
	if err != nil {
		t.Fatalf("NewJSONEvent failed: %v", err)
	}

	if event.Type != EventBroadcastFinished {
		t.Errorf("expected %s, got %s", EventBroadcastFinished, event.Type)
	}

	if event.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}

	var decoded BroadcastFinishedPayload
	if err := json.Unmarshal(event.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if decoded.JobID != "job-1" || decoded.Sent != 43 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}
