package branch

import (
	"errors"
	"fmt"
)

// ErrInvalidVariant is matched by variant validation failures.
var ErrInvalidVariant = errors.New("invalid outcome variant")

// OutcomeVariant is one prepared outcome of a branch.
type OutcomeVariant struct {
	Category     Category     `json:"category"`
	RequiresRoll bool         `json:"requires_dice"`
	Skill        string       `json:"skill,omitempty"`
	DC           int          `json:"dc,omitempty"`
	Attribute    string       `json:"attribute,omitempty"`
	Narrative    string       `json:"narrative"`
	Deltas       []StateDelta `json:"state_deltas,omitempty"`
	TimeMinutes  int          `json:"time_passed_minutes,omitempty"`
}

// HasDC reports whether the variant carries a usable difficulty.
func (v OutcomeVariant) HasDC() bool {
	return v.DC > 0
}

// Validate checks the category, the skill/DC pairing and every delta.
func (v OutcomeVariant) Validate() error {
	if !v.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidVariant, v.Category)
	}
	if v.RequiresRoll && (v.Skill == "" || v.DC <= 0) {
		return fmt.Errorf("%w: %s requires dice but is missing skill or dc", ErrInvalidVariant, v.Category)
	}
	if v.TimeMinutes < 0 {
		return fmt.Errorf("%w: %s has negative time cost", ErrInvalidVariant, v.Category)
	}
	for i, d := range v.Deltas {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %s delta %d: %w", ErrInvalidVariant, v.Category, i, err)
		}
	}
	return nil
}

// Refs returns the entity references embedded in the narrative.
func (v OutcomeVariant) Refs() []EntityRef {
	return ExtractRefs(v.Narrative)
}
