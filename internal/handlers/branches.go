package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/internal/services/queue"
	"github.com/jwebster45206/branch-engine/pkg/actor"
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
	"github.com/jwebster45206/branch-engine/pkg/dice"
	"github.com/jwebster45206/branch-engine/pkg/state"
	"github.com/jwebster45206/branch-engine/pkg/storage"
	"github.com/jwebster45206/branch-engine/pkg/textfilter"
)

// DefaultLockTTL bounds how long one collapse may hold a game.
const DefaultLockTTL = 30 * time.Second

// CreateBranchRequest is the body of POST /v1/branches/{game_id}.
type CreateBranchRequest struct {
	Action   branch.Action                             `json:"action"`
	Decision branch.Decision                           `json:"decision"`
	Variants map[branch.Category]branch.OutcomeVariant `json:"variants"`
}

// CollapseRequest is the body of POST /v1/branches/{game_id}/{branch_id}/collapse.
type CollapseRequest struct {
	PCID            string         `json:"pc_id,omitempty"`
	Advantage       dice.Advantage `json:"advantage"`
	SkipValidation  bool           `json:"skip_validation"`
	SkipApplication bool           `json:"skip_application"`
	// ContentRating softens language in the display narrative for G, PG
	// and PG-13 sessions.
	ContentRating string `json:"content_rating,omitempty"`
}

// CollapseResponse is the committed outcome shown to the player.
type CollapseResponse struct {
	*collapse.Result
	GameState *state.GameState `json:"game_state,omitempty"`
}

type BranchHandler struct {
	storage storage.Storage
	audit   AuditLog
	roller  *dice.Roller
	metrics *collapse.Metrics
	events  EventPublisher
	filter  *textfilter.Filter
	logger  *slog.Logger
	lockTTL time.Duration
}

// NewBranchHandler creates the branch handler. roller must be safe for
// concurrent use; audit may be nil.
func NewBranchHandler(storage storage.Storage, audit AuditLog, roller *dice.Roller, metrics *collapse.Metrics, logger *slog.Logger) *BranchHandler {
	if metrics == nil {
		metrics = collapse.NewMetrics()
	}
	return &BranchHandler{
		storage: storage,
		audit:   audit,
		roller:  roller,
		metrics: metrics,
		filter:  textfilter.New(),
		logger:  logger,
		lockTTL: DefaultLockTTL,
	}
}

// WithEvents publishes branch lifecycle events through p.
// Returns the BranchHandler for method chaining
func (h *BranchHandler) WithEvents(p EventPublisher) *BranchHandler {
	h.events = p
	return h
}

// WithLockTTL overrides the per-game collapse lock expiry.
// Returns the BranchHandler for method chaining
func (h *BranchHandler) WithLockTTL(ttl time.Duration) *BranchHandler {
	if ttl > 0 {
		h.lockTTL = ttl
	}
	return h
}

// Register mounts the branch routes:
// POST /v1/branches/{game_id}                         - Store a prepared branch
// GET /v1/branches/{game_id}                          - List branch ids
// GET /v1/branches/{game_id}/{branch_id}              - Read a branch
// DELETE /v1/branches/{game_id}/{branch_id}           - Discard a branch
// POST /v1/branches/{game_id}/{branch_id}/collapse    - Collapse a branch
func (h *BranchHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/branches/{game_id}", h.handleCreate)
	mux.HandleFunc("GET /v1/branches/{game_id}", h.handleList)
	mux.HandleFunc("GET /v1/branches/{game_id}/{branch_id}", h.handleRead)
	mux.HandleFunc("DELETE /v1/branches/{game_id}/{branch_id}", h.handleDelete)
	mux.HandleFunc("POST /v1/branches/{game_id}/{branch_id}/collapse", h.handleCollapse)
}

func (h *BranchHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return
	}

	var req CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid branch in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid branch: "+err.Error())
		return
	}

	b, err := branch.New(gameID, req.Action, req.Decision, req.Variants)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.storage.SaveBranch(r.Context(), b); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Branch prepared",
		"game_id", gameID.String(),
		"branch_id", b.ID.String(),
		"action", b.Action.Type,
		"variants", len(b.Variants))
	if h.events != nil {
		if err := h.events.PublishBranchPrepared(r.Context(), gameID, b.ID, b.Action.Type); err != nil {
			h.logger.Warn("Failed to publish branch event", "branch_id", b.ID.String(), "error", err)
		}
	}
	writeJSON(w, h.logger, http.StatusCreated, b)
}

func (h *BranchHandler) handleList(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return
	}
	ids, err := h.storage.ListBranches(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string][]uuid.UUID{"branch_ids": ids})
}

func (h *BranchHandler) loadBranch(w http.ResponseWriter, r *http.Request) (*branch.QuantumBranch, bool) {
	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return nil, false
	}
	branchID, ok := pathID(w, r, h.logger, "branch_id")
	if !ok {
		return nil, false
	}

	b, err := h.storage.LoadBranch(r.Context(), gameID, branchID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return nil, false
	}
	if b == nil {
		writeError(w, h.logger, http.StatusNotFound, "Branch not found")
		return nil, false
	}
	return b, true
}

func (h *BranchHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBranch(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, b)
}

func (h *BranchHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return
	}
	branchID, ok := pathID(w, r, h.logger, "branch_id")
	if !ok {
		return
	}
	if err := h.storage.DeleteBranch(r.Context(), gameID, branchID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BranchHandler) handleCollapse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CollapseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid JSON in request body", "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}

	gameID, ok := pathID(w, r, h.logger, "game_id")
	if !ok {
		return
	}

	unlock, err := h.storage.LockGame(ctx, gameID, h.lockTTL)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	defer func() {
		// release even if the request context is gone
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			h.logger.Warn("Failed to release game lock", "game_id", gameID.String(), "error", err)
		}
	}()

	b, ok := h.loadBranch(w, r)
	if !ok {
		return
	}

	gs, err := h.storage.LoadGameState(ctx, gameID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found")
		return
	}

	var who collapse.Actor
	if req.PCID != "" {
		spec, err := h.storage.GetPCSpec(ctx, req.PCID)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		pc, err := actor.NewPCFromSpec(spec)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid PC: "+err.Error())
			return
		}
		who = pc
	}

	worker := state.NewDeltaWorker(gs, h.logger)
	engine := collapse.NewEngine(worker, worker, h.roller, h.logger).WithMetrics(h.metrics)

	res, err := engine.Collapse(ctx, b, who, collapse.Options{
		Advantage:       req.Advantage,
		SkipValidation:  req.SkipValidation,
		SkipApplication: req.SkipApplication,
	})
	if err != nil {
		if b.Status == branch.StatusAborted {
			h.persistAborted(ctx, b, err)
		}
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.storage.CommitCollapse(ctx, gs, b); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if h.audit != nil {
		if err := h.audit.Append(ctx, queue.NewAuditRecord(gameID, res)); err != nil {
			h.logger.Error("Failed to record collapse audit", "game_id", gameID.String(), "error", err)
		}
	}

	if textfilter.ParseRating(req.ContentRating).Filtered() {
		res.DisplayNarrative = h.filter.Replace(res.DisplayNarrative)
	}

	if h.events != nil {
		if err := h.events.PublishBranchCollapsed(ctx, gameID, b.ID, res.Category.String(), res.DisplayNarrative, res.Applied); err != nil {
			h.logger.Warn("Failed to publish branch event", "branch_id", b.ID.String(), "error", err)
		}
		if res.Applied > 0 {
			if err := h.events.PublishGameStateUpdated(ctx, gameID, gs.Clock, len(gs.Entities)); err != nil {
				h.logger.Warn("Failed to publish game state event", "game_id", gameID.String(), "error", err)
			}
		}
	}

	writeJSON(w, h.logger, http.StatusOK, CollapseResponse{Result: res, GameState: gs})
}

// persistAborted stores the aborted status so the branch is not retried.
// The world is left as it was loaded.
func (h *BranchHandler) persistAborted(ctx context.Context, b *branch.QuantumBranch, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := h.storage.SaveBranch(ctx, b); err != nil {
		h.logger.Error("Failed to save aborted branch", "branch_id", b.ID.String(), "error", err)
	}
	if h.events != nil {
		if err := h.events.PublishBranchAborted(ctx, b.GameID, b.ID, cause.Error()); err != nil {
			h.logger.Warn("Failed to publish branch event", "branch_id", b.ID.String(), "error", err)
		}
	}
}
