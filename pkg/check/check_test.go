package check

import (
	"testing"

	"github.com/jwebster45206/branch-engine/pkg/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_AutoSuccessBoundary(t *testing.T) {
	src := dice.Scripted(1, 1)
	roller := dice.NewRoller(src)

	// DC == 10 + modifier auto-succeeds without touching the dice.
	res := Make(roller, 15, 2, 3, dice.Normal)
	assert.True(t, res.AutoSuccess)
	assert.True(t, res.Success)
	assert.Nil(t, res.Roll)
	assert.Equal(t, 1, res.Margin)
	assert.Equal(t, NarrowSuccess, res.Tier)
	assert.False(t, res.CriticalSuccess)
	assert.Equal(t, 0, src.Consumed())

	// DC == 11 + modifier must roll.
	res = Make(roller, 16, 2, 3, dice.Normal)
	assert.False(t, res.AutoSuccess)
	require.NotNil(t, res.Roll)
	assert.Equal(t, 2, src.Consumed())
}

func TestMake_AutoSuccessVirtualMargin(t *testing.T) {
	roller := dice.NewRoller(dice.Scripted())
	res := Make(roller, 5, 4, 0, dice.Normal)
	// 11 + 4 - 5
	assert.Equal(t, 10, res.Margin)
	assert.Equal(t, Exceptional, res.Tier)
	assert.False(t, res.CriticalSuccess)
	assert.Equal(t, 15, res.Total())
}

func TestMake_Rolled(t *testing.T) {
	tests := []struct {
		name     string
		faces    []int
		dc       int
		attrMod  int
		skillMod int
		success  bool
		margin   int
		critSucc bool
		critFail bool
		tier     Tier
	}{
		{"narrow success", []int{8, 9}, 16, 1, 1, true, 3, false, false, NarrowSuccess},
		{"bare success", []int{7, 7}, 16, 1, 1, true, 0, false, false, BareSuccess},
		{"partial failure", []int{5, 6}, 16, 1, 1, false, -3, false, false, PartialFailure},
		{"double max is critical", []int{10, 10}, 25, 0, 0, false, -5, true, false, ClearFailure},
		{"double max high margin", []int{10, 10}, 12, 0, 0, true, 8, true, false, ClearSuccess},
		{"double min is critical", []int{1, 1}, 12, 0, 0, false, -10, false, true, Catastrophic},
		{"double min just under threshold", []int{1, 1}, 11, 0, 0, false, -9, false, true, ClearFailure},
		{"20 from mixed faces is not critical", []int{9, 10}, 25, 1, 0, false, -5, false, false, ClearFailure},
		{"2 from mixed faces is not critical", []int{1, 2}, 12, 0, 0, false, -9, false, false, ClearFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := dice.NewRoller(dice.Scripted(tt.faces...))
			res := Make(roller, tt.dc, tt.attrMod, tt.skillMod, dice.Normal)

			require.False(t, res.AutoSuccess)
			require.NotNil(t, res.Roll)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.margin, res.Margin)
			assert.Equal(t, tt.critSucc, res.CriticalSuccess)
			assert.Equal(t, tt.critFail, res.CriticalFailure)
			assert.Equal(t, tt.tier, res.Tier)
		})
	}
}

func TestMake_CriticalDoesNotOverrideSuccess(t *testing.T) {
	// Double ten against an out-of-reach DC is critical but still a failure.
	roller := dice.NewRoller(dice.Scripted(10, 10))
	res := Make(roller, 30, 2, 1, dice.Normal)
	require.False(t, res.AutoSuccess)
	assert.True(t, res.CriticalSuccess)
	assert.False(t, res.Success)
	assert.Equal(t, -7, res.Margin)
	assert.Equal(t, ClearFailure, res.Tier)

	// Double one is flagged but the margin alone picks the tier.
	roller = dice.NewRoller(dice.Scripted(1, 1))
	res = Make(roller, 21, 10, 0, dice.Normal)
	require.False(t, res.AutoSuccess)
	assert.True(t, res.CriticalFailure)
	assert.False(t, res.Success)
	assert.Equal(t, -9, res.Margin)
	assert.Equal(t, ClearFailure, res.Tier)
}

func TestMake_AdvantageIgnoredForTwoDice(t *testing.T) {
	src := dice.Scripted(2, 3, 10, 10)
	res := Make(dice.NewRoller(src), 20, 0, 0, dice.WithAdvantage)

	require.NotNil(t, res.Roll)
	assert.Equal(t, []int{2, 3}, res.Roll.Dice)
	assert.Nil(t, res.Roll.Discarded)
	assert.Equal(t, dice.WithAdvantage, res.Advantage)
	assert.Equal(t, 2, src.Consumed())
}

func TestFromRoll_ForcedTotal(t *testing.T) {
	roll := dice.RollResult{
		Expression: dice.Expression{Count: 2, Sides: 10, Modifier: 5},
		Dice:       []int{7, 8},
		Modifier:   5,
		Total:      20,
	}
	res := FromRoll(15, roll, dice.Normal)
	assert.True(t, res.Success)
	assert.Equal(t, 5, res.Margin)
	assert.Equal(t, ClearSuccess, res.Tier)
}

func TestSavingThrow(t *testing.T) {
	res := SavingThrow(dice.NewRoller(dice.Scripted(4, 4)), 14, 2, dice.Normal)
	assert.Equal(t, 10, res.Total())
	assert.False(t, res.Success)
	assert.Equal(t, PartialFailure, res.Tier)

	res = SavingThrow(dice.NewRoller(dice.Scripted()), 12, 2, dice.Normal)
	assert.True(t, res.AutoSuccess)
}
