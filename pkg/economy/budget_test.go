package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_UseEachOnce(t *testing.T) {
	b := NewBudget()

	for _, c := range []Category{Standard, Move, Bonus, Reaction} {
		require.True(t, b.CanUse(c), c.String())
		require.NoError(t, b.Use(c))
		assert.False(t, b.CanUse(c))
		assert.ErrorIs(t, b.Use(c), ErrExhausted)
		assert.Equal(t, 1, b.Used(c), "failed use must not consume")
		assert.Equal(t, 0, b.Remaining(c))
	}
}

func TestBudget_FreeIsUnlimited(t *testing.T) {
	b := NewBudget()
	for i := 0; i < 50; i++ {
		require.NoError(t, b.Use(Free))
	}
	assert.True(t, b.CanUse(Free))
	assert.Equal(t, -1, b.Remaining(Free))
}

func TestBudget_ConvertStandardToMove(t *testing.T) {
	b := NewBudget()
	require.NoError(t, b.ConvertStandardToMove())

	assert.Equal(t, 0, b.Remaining(Standard))
	assert.Equal(t, 2, b.Remaining(Move))
	require.NoError(t, b.Use(Move))
	require.NoError(t, b.Use(Move))
	assert.ErrorIs(t, b.Use(Move), ErrExhausted)

	err := b.ConvertStandardToMove()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 0, b.Remaining(Move))
}

func TestBudget_Reset(t *testing.T) {
	b := NewBudget()
	require.NoError(t, b.ConvertStandardToMove())
	require.NoError(t, b.Use(Bonus))
	require.NoError(t, b.Use(Reaction))

	b.Reset()
	assert.Equal(t, map[string]int{"standard": 1, "move": 1, "bonus": 1, "reaction": 1}, b.Summary())
}

func TestBudget_Custom(t *testing.T) {
	b := NewBudgetWith(map[Category]int{Standard: 2, Reaction: -1})
	assert.Equal(t, 2, b.Remaining(Standard))
	assert.Equal(t, 0, b.Remaining(Reaction))
	assert.False(t, b.CanUse(Move))
}

func TestBudget_UnknownCategory(t *testing.T) {
	b := NewBudget()
	assert.False(t, b.CanUse(Category(42)))
	assert.ErrorIs(t, b.Use(Category(42)), ErrUnknownCategory)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Bonus ")
	require.NoError(t, err)
	assert.Equal(t, Bonus, c)

	_, err = ParseCategory("legendary")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
