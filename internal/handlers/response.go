package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
	"github.com/jwebster45206/branch-engine/pkg/dice"
	"github.com/jwebster45206/branch-engine/pkg/state"
	"github.com/jwebster45206/branch-engine/pkg/storage"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// StaleDetails describes the delta that made a branch stale.
type StaleDetails struct {
	Category   branch.Category `json:"category"`
	DeltaIndex int             `json:"delta_index"`
	DeltaType  string          `json:"delta_type"`
	Target     string          `json:"target_key"`
	Expected   branch.Snapshot `json:"expected"`
	Actual     branch.Snapshot `json:"actual"`
	Fields     []string        `json:"fields"`
}

// ApplyDetails describes a failed delta application.
type ApplyDetails struct {
	Category   branch.Category `json:"category"`
	DeltaIndex int             `json:"delta_index"`
	DeltaType  string          `json:"delta_type"`
	Target     string          `json:"target_key"`
	Applied    int             `json:"applied"`
	RolledBack bool            `json:"rolled_back"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// errorResponse maps domain errors onto a status code and body.
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var stale *collapse.StaleStateError
	var apply *collapse.ApplyError
	switch {
	case errors.As(err, &stale):
		resp.Details = StaleDetails{
			Category:   stale.Category,
			DeltaIndex: stale.Index,
			DeltaType:  stale.Delta.Tag(),
			Target:     stale.Delta.Target,
			Expected:   stale.Expected,
			Actual:     stale.Actual,
			Fields:     stale.Fields,
		}
		return http.StatusConflict, resp
	case errors.As(err, &apply):
		resp.Details = ApplyDetails{
			Category:   apply.Category,
			DeltaIndex: apply.Index,
			DeltaType:  apply.Delta.Tag(),
			Target:     apply.Delta.Target,
			Applied:    apply.Applied,
			RolledBack: apply.RolledBack,
		}
		return http.StatusInternalServerError, resp
	case errors.Is(err, branch.ErrAlreadyCollapsed),
		errors.Is(err, branch.ErrCollapseInProgress),
		errors.Is(err, branch.ErrBranchAborted),
		errors.Is(err, storage.ErrGameLocked),
		errors.Is(err, state.ErrEntityExists):
		return http.StatusConflict, resp
	case errors.Is(err, storage.ErrPCNotFound):
		return http.StatusNotFound, resp
	case errors.Is(err, dice.ErrInvalidNotation),
		errors.Is(err, branch.ErrInvalidDelta),
		errors.Is(err, branch.ErrInvalidVariant),
		errors.Is(err, branch.ErrMissingSuccess):
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, logger, status, resp)
}
