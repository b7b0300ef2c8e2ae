// Package branch models quantum branches: pre-generated outcome variants
// for a predicted player action, resolved later by a real dice roll.
package branch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSuccess     = errors.New("branch has no success variant")
	ErrAlreadyCollapsed   = errors.New("branch already collapsed")
	ErrCollapseInProgress = errors.New("branch collapse already in progress")
	ErrBranchAborted      = errors.New("branch collapse was aborted; regenerate it")
	ErrNotCollapsing      = errors.New("branch is not collapsing")
)

// Status is the collapse state of a branch.
type Status string

const (
	StatusPrepared   Status = "prepared"
	StatusCollapsing Status = "collapsing"
	StatusCollapsed  Status = "collapsed"
	// StatusAborted marks a branch whose collapse failed validation or
	// application. It can never be collapsed again.
	StatusAborted Status = "aborted"
)

// NoTwist is the decision type for a branch without a narrative twist.
const NoTwist = "no_twist"

// Action is the predicted player action that triggered generation.
type Action struct {
	Type   string `json:"action_type"`
	Actor  string `json:"actor_key,omitempty"`
	Target string `json:"target_key,omitempty"`
	Input  string `json:"input,omitempty"`
}

// Decision is the narrative twist decision behind a branch.
type Decision struct {
	Type      string   `json:"decision_type"`
	TwistType string   `json:"twist_type,omitempty"`
	Reason    string   `json:"reasoning,omitempty"`
	Grounding []string `json:"grounding_facts,omitempty"`
}

// IsTwist reports whether a twist applies. An empty type counts as no twist.
func (d Decision) IsTwist() bool {
	return d.Type != "" && d.Type != NoTwist
}

// QuantumBranch is a bundle of prepared outcomes for one predicted action.
// Everything except Status and Chosen is fixed once built.
type QuantumBranch struct {
	ID        uuid.UUID                   `json:"id"`
	GameID    uuid.UUID                   `json:"game_id"`
	Action    Action                      `json:"action"`
	Decision  Decision                    `json:"decision"`
	Variants  map[Category]OutcomeVariant `json:"variants"`
	CreatedAt time.Time                   `json:"created_at"`
	Status    Status                      `json:"status"`
	Chosen    Category                    `json:"chosen,omitempty"`
}

// New builds a prepared branch and validates it.
func New(gameID uuid.UUID, action Action, decision Decision, variants map[Category]OutcomeVariant) (*QuantumBranch, error) {
	b := &QuantumBranch{
		ID:        uuid.New(),
		GameID:    gameID,
		Action:    action,
		Decision:  decision,
		Variants:  make(map[Category]OutcomeVariant, len(variants)),
		CreatedAt: time.Now(),
		Status:    StatusPrepared,
	}
	for cat, v := range variants {
		if v.Category == "" {
			v.Category = cat
		}
		b.Variants[cat] = v
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the success entry exists and every variant is sound.
func (b *QuantumBranch) Validate() error {
	if _, ok := b.Variants[Success]; !ok {
		return ErrMissingSuccess
	}
	for cat, v := range b.Variants {
		if !cat.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidVariant, cat)
		}
		if v.Category != cat {
			return fmt.Errorf("%w: variant keyed %s is tagged %s", ErrInvalidVariant, cat, v.Category)
		}
		if err := v.Validate(); err != nil {
			return err
		}
	}
	switch b.Status {
	case "", StatusPrepared, StatusCollapsing, StatusCollapsed, StatusAborted:
	default:
		return fmt.Errorf("unknown branch status %q", b.Status)
	}
	return nil
}

// Variant returns the variant for c.
func (b *QuantumBranch) Variant(c Category) (OutcomeVariant, bool) {
	v, ok := b.Variants[c]
	return v, ok
}

// RequiresRoll reports whether any variant needs dice.
func (b *QuantumBranch) RequiresRoll() bool {
	for _, v := range b.Variants {
		if v.RequiresRoll {
			return true
		}
	}
	return false
}

// RollVariant returns the variant that defines the check, preferring
// success. ok is false when no variant carries a DC.
func (b *QuantumBranch) RollVariant() (OutcomeVariant, bool) {
	for _, c := range Categories {
		if v, ok := b.Variants[c]; ok && v.HasDC() {
			return v, true
		}
	}
	return OutcomeVariant{}, false
}

// IsCollapsed reports whether a variant has been committed.
func (b *QuantumBranch) IsCollapsed() bool {
	return b.Status == StatusCollapsed
}

// BeginCollapse moves a prepared branch to collapsing. Any other state is a
// caller error.
func (b *QuantumBranch) BeginCollapse() error {
	switch b.Status {
	case "", StatusPrepared:
		b.Status = StatusCollapsing
		return nil
	case StatusCollapsed:
		return fmt.Errorf("%w: %s (chose %s)", ErrAlreadyCollapsed, b.ID, b.Chosen)
	case StatusCollapsing:
		return fmt.Errorf("%w: %s", ErrCollapseInProgress, b.ID)
	case StatusAborted:
		return fmt.Errorf("%w: %s", ErrBranchAborted, b.ID)
	default:
		return fmt.Errorf("unknown branch status %q", b.Status)
	}
}

// CompleteCollapse records the chosen category.
func (b *QuantumBranch) CompleteCollapse(c Category) error {
	if b.Status != StatusCollapsing {
		return fmt.Errorf("%w: %s is %s", ErrNotCollapsing, b.ID, b.Status)
	}
	b.Status = StatusCollapsed
	b.Chosen = c
	return nil
}

// AbortCollapse marks a collapsing branch as aborted.
func (b *QuantumBranch) AbortCollapse() {
	if b.Status == StatusCollapsing {
		b.Status = StatusAborted
	}
}
