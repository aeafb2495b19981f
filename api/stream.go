package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fogsched/benchmark"
	"fogsched/logger"
	"fogsched/strategy"
)

// Run event types emitted on the stream.
const (
	EventConnected = "connected"
	EventProgress  = "progress"
	EventDone      = "done"
	EventFailed    = "failed"
)

// RunEvent is the envelope streamed to run subscribers.
type RunEvent struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	// Progress is set on progress events.
	Progress *strategy.Progress `json:"progress,omitempty"`
	// Metrics is set on done events.
	Metrics *benchmark.Metrics `json:"metrics,omitempty"`
	// Error is set on failed events.
	Error string `json:"error,omitempty"`
}

// subscriber is one connected run-event listener.
type subscriber struct {
	id     string
	runID  string
	events chan []byte
}

// send queues data for the subscriber, dropping it when the subscriber
// cannot keep up. Progress events are advisory; a dropped one is replaced
// by the next.
func (s *subscriber) send(data []byte) bool {
	select {
	case s.events <- data:
		return true
	default:
		return false
	}
}

// Hub fans run events out to their subscribers. Strategies publish through
// a Config.Progress callback bridged by PublishProgress; handlers attach
// subscribers per run ID.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*subscriber // run ID -> subscriber ID -> subscriber
	stopped     bool
	log         *logger.Logger
}

// NewHub creates an empty run-event hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[string]*subscriber),
		log:         logger.Get("stream"),
	}
}

// Subscribe attaches a new listener to the run.
func (h *Hub) Subscribe(runID string) *subscriber {
	sub := &subscriber{
		id:     uuid.New().String(),
		runID:  runID,
		events: make(chan []byte, 256),
	}
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		close(sub.events)
		return sub
	}
	if h.subscribers[runID] == nil {
		h.subscribers[runID] = make(map[string]*subscriber)
	}
	h.subscribers[runID][sub.id] = sub
	total := len(h.subscribers[runID])
	h.mu.Unlock()

	h.log.Debug("subscriber attached", map[string]interface{}{
		"run_id":      runID,
		"subscribers": total,
	})
	return sub
}

// Unsubscribe detaches the listener and closes its channel.
func (h *Hub) Unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[sub.runID]
	if !ok {
		return
	}
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.subscribers, sub.runID)
	}
	close(sub.events)
}

// Publish sends the event to every subscriber of its run.
func (h *Hub) Publish(ev RunEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("event marshal failed", logger.ErrorFields("publish", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for _, sub := range h.subscribers[ev.RunID] {
		if !sub.send(data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Warn("slow subscribers dropped event", map[string]interface{}{
			"run_id":  ev.RunID,
			"type":    ev.Type,
			"dropped": dropped,
		})
	}
}

// PublishProgress adapts the hub to the strategy progress callback.
func (h *Hub) PublishProgress(runID string) strategy.ProgressFunc {
	return func(p strategy.Progress) {
		h.Publish(RunEvent{Type: EventProgress, RunID: runID, Progress: &p})
	}
}

// SubscriberCount returns the number of listeners attached to the run.
func (h *Hub) SubscriberCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[runID])
}

// Stop detaches and closes every subscriber. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for runID, subs := range h.subscribers {
		for id, sub := range subs {
			close(sub.events)
			delete(subs, id)
		}
		delete(h.subscribers, runID)
	}
}

// serveRunEvents streams the run's events to the client until the client
// disconnects or the hub shuts down. Keep-alive comments hold the
// connection open through proxies during quiet stretches.
func (h *Hub) serveRunEvents(c *gin.Context, runID string) {
	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming not supported")
		return
	}

	// SSE connections outlive the server write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Warn("could not disable write deadline", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	sub := h.Subscribe(runID)
	defer h.Unsubscribe(sub)

	connected, _ := json.Marshal(RunEvent{Type: EventConnected, RunID: runID})
	writeSSE(w, EventConnected, connected)
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-sub.events:
			if !ok {
				return
			}
			eventType := EventProgress
			if t := eventTypeOf(data); t != "" {
				eventType = t
			}
			writeSSE(w, eventType, data)
			flusher.Flush()
			// Terminal events end the stream.
			if eventType == EventDone || eventType == EventFailed {
				return
			}

		case <-keepAlive.C:
			fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

// writeSSE frames one event in wire format.
func writeSSE(w http.ResponseWriter, eventType string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// eventTypeOf peeks the type field of a marshalled RunEvent.
func eventTypeOf(data []byte) string {
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ""
	}
	return strings.TrimSpace(ev.Type)
}
