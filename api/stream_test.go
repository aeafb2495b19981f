package api

import (
	"encoding/json"
	"testing"

	"fogsched/strategy"
)

// --- hub tests ---

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	sub := h.Subscribe("run-1")
	other := h.Subscribe("run-2")

	h.Publish(RunEvent{Type: EventProgress, RunID: "run-1", Progress: &strategy.Progress{Iteration: 3, Best: 1.5}})

	select {
	case data := <-sub.events:
		var ev RunEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Type != EventProgress || ev.RunID != "run-1" {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.Progress == nil || ev.Progress.Iteration != 3 {
			t.Errorf("expected progress iteration 3, got %+v", ev.Progress)
		}
	default:
		t.Fatal("subscriber received no event")
	}

	select {
	case <-other.events:
		t.Fatal("event leaked to a different run's subscriber")
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	sub := h.Subscribe("run-1")
	h.Unsubscribe(sub)

	if _, ok := <-sub.events; ok {
		t.Error("expected closed channel after unsubscribe")
	}
	if n := h.SubscriberCount("run-1"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}

	// A second unsubscribe is a no-op.
	h.Unsubscribe(sub)
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	sub := h.Subscribe("run-1")
	for i := 0; i < cap(sub.events)+10; i++ {
		h.Publish(RunEvent{Type: EventProgress, RunID: "run-1"})
	}
	if len(sub.events) != cap(sub.events) {
		t.Errorf("expected full channel, got %d of %d", len(sub.events), cap(sub.events))
	}
}

func TestHubStopDetachesEverything(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("run-1")
	h.Stop()

	if _, ok := <-sub.events; ok {
		t.Error("expected closed channel after stop")
	}

	// Subscribing after stop yields a closed channel instead of a leak.
	late := h.Subscribe("run-2")
	if _, ok := <-late.events; ok {
		t.Error("expected closed channel for post-stop subscription")
	}

	// Publishing after stop is a no-op.
	h.Publish(RunEvent{Type: EventDone, RunID: "run-1"})
}

func TestPublishProgressBridgesCallback(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	sub := h.Subscribe("abc")
	fn := h.PublishProgress("abc")
	fn(strategy.Progress{Strategy: "ga", Iteration: 1, Best: 9.9, Evaluations: 50})

	select {
	case data := <-sub.events:
		var ev RunEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Progress == nil || ev.Progress.Strategy != "ga" || ev.Progress.Evaluations != 50 {
			t.Errorf("unexpected progress %+v", ev.Progress)
		}
	default:
		t.Fatal("callback did not publish")
	}
}

func TestEventTypeOf(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"done event", `{"type":"done","run_id":"x"}`, EventDone},
		{"progress event", `{"type":"progress"}`, EventProgress},
		{"garbage", `{{{`, ""},
		{"missing type", `{"run_id":"x"}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := eventTypeOf([]byte(tc.data)); got != tc.want {
				t.Errorf("eventTypeOf(%q) = %q, want %q", tc.data, got, tc.want)
			}
		})
	}
}
