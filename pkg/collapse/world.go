package collapse

import (
	"context"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/check"
)

// StateReader returns the live values a delta could have changed, used to
// detect stale branches. Only the fields relevant to the delta type need to
// be reported.
type StateReader interface {
	Snapshot(ctx context.Context, deltaType branch.DeltaType, target string) (branch.Snapshot, error)
}

// StateWriter has one mutator per delta type.
type StateWriter interface {
	CreateEntity(ctx context.Context, key string, spec branch.CreateEntity) error
	DeactivateEntity(ctx context.Context, key, reason string) error
	RelocateEntity(ctx context.Context, key, location string) error
	UpdateEntity(ctx context.Context, key string, activity, mood *string) error
	TransferItem(ctx context.Context, item, toEntity, toStorage string) error
	AdjustNeed(ctx context.Context, entity, need string, amount int) error
	AdjustRelationship(ctx context.Context, from, to, dimension string, amount int, reason string) error
	RecordFact(ctx context.Context, subject, predicate, value, category string, secret bool) error
	AdvanceClock(ctx context.Context, minutes int) error
}

// Transactor is implemented by writers that can make a batch of mutations
// all-or-nothing. When the configured writer implements it, deltas are
// applied inside one transaction and a failure rolls every write back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx StateWriter) error) error
}

// Actor supplies the acting entity's modifiers.
type Actor interface {
	AttributeModifier(attribute string) int
	SkillBonus(skill string) int
}

// Modifiers is a plain Actor for callers without a character sheet.
type Modifiers struct {
	Attributes map[string]int `json:"attributes,omitempty"`
	Skills     map[string]int `json:"skills,omitempty"`
}

func (m Modifiers) AttributeModifier(attribute string) int {
	return m.Attributes[attribute]
}

func (m Modifiers) SkillBonus(skill string) int {
	return m.Skills[check.NormalizeSkill(skill)]
}
