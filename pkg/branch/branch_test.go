package branch

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickLockVariants() map[Category]OutcomeVariant {
	return map[Category]OutcomeVariant{
		Success: {
			RequiresRoll: true,
			Skill:        "lockpicking",
			DC:           15,
			Narrative:    "The [cellar_door:cellar door] clicks open.",
			Deltas: []StateDelta{
				NewDelta("cellar_door", &UpdateEntity{Activity: strPtr("open")}).
					Expect(Snapshot{SnapActivity: "locked"}),
			},
			TimeMinutes: 5,
		},
		Failure: {
			RequiresRoll: true,
			Skill:        "lockpicking",
			DC:           15,
			Narrative:    "The pick snaps.",
		},
	}
}

func TestNew(t *testing.T) {
	b, err := New(uuid.New(), Action{Type: "pick_lock", Target: "cellar_door"}, Decision{Type: NoTwist}, pickLockVariants())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, StatusPrepared, b.Status)
	assert.Equal(t, Success, b.Variants[Success].Category)
	assert.Equal(t, Failure, b.Variants[Failure].Category)
	assert.True(t, b.RequiresRoll())
	assert.False(t, b.Decision.IsTwist())
}

func TestNew_RequiresSuccess(t *testing.T) {
	_, err := New(uuid.New(), Action{}, Decision{}, map[Category]OutcomeVariant{
		Failure: {Narrative: "nope"},
	})
	assert.ErrorIs(t, err, ErrMissingSuccess)
}

func TestNew_RollNeedsSkillAndDC(t *testing.T) {
	_, err := New(uuid.New(), Action{}, Decision{}, map[Category]OutcomeVariant{
		Success: {RequiresRoll: true, Skill: "stealth"},
	})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestNew_MismatchedCategory(t *testing.T) {
	_, err := New(uuid.New(), Action{}, Decision{}, map[Category]OutcomeVariant{
		Success: {Category: Failure},
	})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestRollVariant(t *testing.T) {
	b, err := New(uuid.New(), Action{}, Decision{}, pickLockVariants())
	require.NoError(t, err)

	v, ok := b.RollVariant()
	require.True(t, ok)
	assert.Equal(t, Success, v.Category)

	b, err = New(uuid.New(), Action{}, Decision{}, map[Category]OutcomeVariant{
		Success: {Narrative: "ok"},
		Failure: {RequiresRoll: true, Skill: "stealth", DC: 12},
	})
	require.NoError(t, err)
	v, ok = b.RollVariant()
	require.True(t, ok)
	assert.Equal(t, Failure, v.Category)

	b, err = New(uuid.New(), Action{}, Decision{}, map[Category]OutcomeVariant{Success: {}})
	require.NoError(t, err)
	_, ok = b.RollVariant()
	assert.False(t, ok)
}

func TestStateMachine(t *testing.T) {
	b, err := New(uuid.New(), Action{}, Decision{}, pickLockVariants())
	require.NoError(t, err)

	require.NoError(t, b.BeginCollapse())
	assert.ErrorIs(t, b.BeginCollapse(), ErrCollapseInProgress)
	require.NoError(t, b.CompleteCollapse(Failure))

	assert.True(t, b.IsCollapsed())
	assert.Equal(t, Failure, b.Chosen)
	assert.ErrorIs(t, b.BeginCollapse(), ErrAlreadyCollapsed)
	assert.ErrorIs(t, b.CompleteCollapse(Success), ErrNotCollapsing)
}

func TestStateMachine_Abort(t *testing.T) {
	b, err := New(uuid.New(), Action{}, Decision{}, pickLockVariants())
	require.NoError(t, err)

	b.AbortCollapse()
	assert.Equal(t, StatusPrepared, b.Status, "abort only applies while collapsing")

	require.NoError(t, b.BeginCollapse())
	b.AbortCollapse()
	assert.Equal(t, StatusAborted, b.Status)
	assert.ErrorIs(t, b.BeginCollapse(), ErrBranchAborted)
}

func TestQuantumBranch_JSONRoundTrip(t *testing.T) {
	b, err := New(uuid.New(), Action{Type: "pick_lock"}, Decision{Type: "complication", TwistType: "guard_arrives"}, pickLockVariants())
	require.NoError(t, err)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var got QuantumBranch
	require.NoError(t, json.Unmarshal(data, &got))
	require.NoError(t, got.Validate())

	assert.Equal(t, b.ID, got.ID)
	assert.True(t, got.Decision.IsTwist())
	require.Len(t, got.Variants[Success].Deltas, 1)
	assert.Equal(t, DeltaUpdateEntity, got.Variants[Success].Deltas[0].Type)
}

func TestQuantumBranch_UnknownCategoryKeyRejected(t *testing.T) {
	data := `{"variants": {"success": {"category":"success","narrative":"ok"}, "meh": {"category":"meh"}}}`
	var b QuantumBranch
	assert.Error(t, json.Unmarshal([]byte(data), &b))
}
