package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/branch-engine/pkg/check"
	"github.com/jwebster45206/branch-engine/pkg/dice"
)

// RollRequest is the body of POST /v1/roll.
type RollRequest struct {
	Notation  string         `json:"notation"`
	Advantage dice.Advantage `json:"advantage"`
}

// RollResponse carries the roll and its audit line.
type RollResponse struct {
	dice.RollResult
	Display string `json:"display"`
}

type RollHandler struct {
	roller *dice.Roller
	logger *slog.Logger
}

func NewRollHandler(roller *dice.Roller, logger *slog.Logger) *RollHandler {
	return &RollHandler{roller: roller, logger: logger}
}

func (h *RollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req RollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	res, err := h.roller.RollNotation(req.Notation, req.Advantage)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, RollResponse{RollResult: res, Display: res.String()})
}

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	DC                int            `json:"dc"`
	AttributeModifier int            `json:"attribute_modifier"`
	SkillModifier     int            `json:"skill_modifier"`
	Advantage         dice.Advantage `json:"advantage"`
	SavingThrow       bool           `json:"saving_throw"`
}

type CheckHandler struct {
	roller *dice.Roller
	logger *slog.Logger
}

func NewCheckHandler(roller *dice.Roller, logger *slog.Logger) *CheckHandler {
	return &CheckHandler{roller: roller, logger: logger}
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.DC <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("dc must be positive, got %d", req.DC))
		return
	}

	var res check.Result
	if req.SavingThrow {
		res = check.SavingThrow(h.roller, req.DC, req.AttributeModifier+req.SkillModifier, req.Advantage)
	} else {
		res = check.Make(h.roller, req.DC, req.AttributeModifier, req.SkillModifier, req.Advantage)
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}
