package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/branch-engine/internal/services/events"
)

// EventPublisher announces branch lifecycle changes to listeners.
type EventPublisher interface {
	PublishBranchPrepared(ctx context.Context, gameID, branchID uuid.UUID, action string) error
	PublishBranchCollapsed(ctx context.Context, gameID, branchID uuid.UUID, category, narrative string, applied int) error
	PublishBranchAborted(ctx context.Context, gameID, branchID uuid.UUID, reason string) error
	PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, clock, entities int) error
}

// EventSubscriber opens a per-game event subscription.
type EventSubscriber interface {
	Subscribe(ctx context.Context, gameID uuid.UUID) *redis.PubSub
}

// KeepaliveInterval is how often an idle event stream sends a comment line.
var KeepaliveInterval = 30 * time.Second

// EventsHandler handles Server-Sent Events (SSE) for real-time game updates
type EventsHandler struct {
	events EventSubscriber
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(events EventSubscriber, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

// Register mounts GET /v1/events/{game_id}.
func (h *EventsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/events/{game_id}", h.handleStream)
}

func (h *EventsHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return
	}

	h.logger.Info("SSE connection established",
		"game_id", gameID.String(),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	pubsub := h.events.Subscribe(r.Context(), gameID)
	defer func() {
		if err := pubsub.Close(); err != nil {
			h.logger.Error("Failed to close pubsub", "error", err)
		}
	}()
	if _, err := pubsub.Receive(r.Context()); err != nil {
		h.logger.Error("Failed to subscribe to game events", "game_id", gameID.String(), "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Event stream unavailable")
		return
	}
	msgChan := pubsub.Channel()

	keepalive := time.NewTicker(KeepaliveInterval)
	defer keepalive.Stop()

	h.sendSSE(w, "connected", map[string]any{
		"game_id": gameID.String(),
		"message": "Connected to event stream",
	})

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "game_id", gameID.String())
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}
			h.sendSSE(w, string(event.Type), event)

		case <-keepalive.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		h.logger.Error("Failed to write event", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
