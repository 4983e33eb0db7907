package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"sheetimport/domain/task"

	"github.com/gin-gonic/gin"
)

// Event types streamed to import subscribers
const (
	EventProgress = "progress"
	EventState    = "state"
	EventDone     = "done"
	EventFailed   = "failed"
)

// clientSendTimeout bounds how long the hub waits on one stalled client
const clientSendTimeout = 2 * time.Second

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan ProgressEvent
}

// ProgressEvent is one update of an import session
type ProgressEvent struct {
	SessionID string               `json:"session_id"`
	EventType string               `json:"event_type"`
	State     string               `json:"state,omitempty"`
	Progress  *task.ImportProgress `json:"progress,omitempty"`
	Error     string               `json:"error,omitempty"`
	Code      string               `json:"code,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// SSEHub fans import events out to the clients following a session
type SSEHub struct {
	clients    map[string]map[chan ProgressEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ProgressEvent
	ping       time.Duration
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan ProgressEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan ProgressEvent, 100),
		ping:       30 * time.Second,
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan ProgressEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for import %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				log.Printf("[SSE] Client unregistered from import %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				h.deliver(clientChan, event)
			}
			h.clientsMu.RUnlock()
		}
	}
}

// deliver waits up to clientSendTimeout for a slow client before giving up
// on this event for it
func (h *SSEHub) deliver(clientChan chan ProgressEvent, event ProgressEvent) {
	select {
	case clientChan <- event:
		return
	default:
	}

	timer := time.NewTimer(clientSendTimeout)
	defer timer.Stop()
	select {
	case clientChan <- event:
	case <-timer.C:
		log.Printf("[SSE] Client for import %s not reading, skipping %s event",
			event.SessionID, event.EventType)
	}
}

// Broadcast sends an event to all clients following a session
func (h *SSEHub) Broadcast(event ProgressEvent) {
	_ = h.BroadcastContext(context.Background(), event)
}

// BroadcastContext queues an event for the session's clients, waiting for
// room in the hub rather than dropping it. It only fails when ctx ends first.
func (h *SSEHub) BroadcastContext(ctx context.Context, event ProgressEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
		return nil
	case <-ctx.Done():
		log.Printf("[SSE] Dropping %s event for import %s: %v", event.EventType, event.SessionID, ctx.Err())
		return ctx.Err()
	}
}

// ProgressFunc returns a callback publishing commit progress of a session.
// Every event is queued; the commit waits while the hub is saturated.
func (h *SSEHub) ProgressFunc(ctx context.Context, sessionID string) func(task.ImportProgress) {
	return func(p task.ImportProgress) {
		_ = h.BroadcastContext(ctx, ProgressEvent{SessionID: sessionID, EventType: EventProgress, Progress: &p})
	}
}

// Stream serves the event stream of one session until the client leaves
func (h *SSEHub) Stream(c *gin.Context, sessionID string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan ProgressEvent, 256)

	select {
	case h.register <- SSEClient{SessionID: sessionID, Channel: clientChan}:
	default:
		c.JSON(500, gin.H{"error": "SSE hub registration failed", "code": "INTERNAL_ERROR"})
		return
	}

	defer func() {
		h.unregister <- SSEClient{SessionID: sessionID, Channel: clientChan}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-time.After(h.ping):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
