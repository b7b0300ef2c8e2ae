package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/internal/services/queue"
	"github.com/jwebster45206/branch-engine/pkg/state"
	"github.com/jwebster45206/branch-engine/pkg/storage"
)

// AuditLog records and lists committed collapses.
type AuditLog interface {
	Append(ctx context.Context, rec queue.AuditRecord) error
	Recent(ctx context.Context, gameID uuid.UUID, limit int) ([]queue.AuditRecord, error)
}

// EntitySeed is an entity in a create request. Seeds that omit "active"
// start active.
type EntitySeed struct {
	state.Entity
	Active *bool `json:"active,omitempty"`
}

// Resolve returns the entity with the seed's active flag applied.
func (s EntitySeed) Resolve() state.Entity {
	e := s.Entity
	e.Active = s.Active == nil || *s.Active
	return e
}

// CreateGameStateRequest seeds a new world.
type CreateGameStateRequest struct {
	Entities      []EntitySeed              `json:"entities"`
	Relationships map[string]map[string]int `json:"relationships,omitempty"`
	Facts         []state.Fact              `json:"facts,omitempty"`
	Clock         int                       `json:"clock_minutes,omitempty"`
}

type GameStateHandler struct {
	storage storage.Storage
	audit   AuditLog
	logger  *slog.Logger
}

func NewGameStateHandler(storage storage.Storage, audit AuditLog, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		storage: storage,
		audit:   audit,
		logger:  logger,
	}
}

// Register mounts the game state routes:
// POST /v1/gamestate              - Create a world
// GET /v1/gamestate/{id}          - Read a world
// DELETE /v1/gamestate/{id}       - Delete a world
// GET /v1/gamestate/{id}/audit    - Recent collapse audit records
func (h *GameStateHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/gamestate", h.handleCreate)
	mux.HandleFunc("GET /v1/gamestate/{id}", h.handleRead)
	mux.HandleFunc("DELETE /v1/gamestate/{id}", h.handleDelete)
	mux.HandleFunc("GET /v1/gamestate/{id}/audit", h.handleAudit)
}

func pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid ID in path", "param", name, "id", raw, "error", err)
		writeError(w, logger, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	gs := state.NewGameState()
	for _, seed := range req.Entities {
		e := seed.Resolve()
		if e.Key == "" {
			writeError(w, h.logger, http.StatusBadRequest, "every entity needs a key")
			return
		}
		if _, dup := gs.Entities[e.Key]; dup {
			writeError(w, h.logger, http.StatusBadRequest, "duplicate entity key: "+e.Key)
			return
		}
		gs.AddEntity(e)
	}
	for k, dims := range req.Relationships {
		gs.Relationships[k] = dims
	}
	gs.Facts = req.Facts
	gs.Clock = req.Clock

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.logger.Info("Game state created", "game_id", gs.ID.String(), "entities", len(gs.Entities))
	writeJSON(w, h.logger, http.StatusCreated, gs)
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}
	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}
	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger, "id")
	if !ok {
		return
	}
	if h.audit == nil {
		writeJSON(w, h.logger, http.StatusOK, []queue.AuditRecord{})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := h.audit.Recent(r.Context(), id, limit)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, recs)
}
