package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		margin int
		want   Tier
	}{
		{25, Exceptional},
		{10, Exceptional},
		{9, ClearSuccess},
		{5, ClearSuccess},
		{4, NarrowSuccess},
		{1, NarrowSuccess},
		{0, BareSuccess},
		{-1, PartialFailure},
		{-4, PartialFailure},
		{-5, ClearFailure},
		{-9, ClearFailure},
		{-10, Catastrophic},
		{-30, Catastrophic},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.margin), "margin %d", tt.margin)
		})
	}
}

func TestTier_IsSuccess(t *testing.T) {
	assert.True(t, BareSuccess.IsSuccess())
	assert.True(t, Exceptional.IsSuccess())
	assert.False(t, PartialFailure.IsSuccess())
	assert.False(t, Catastrophic.IsSuccess())
}

func TestTier_TextRoundTrip(t *testing.T) {
	for tier := Catastrophic; tier <= Exceptional; tier++ {
		text, err := tier.MarshalText()
		require.NoError(t, err)

		var got Tier
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, tier, got)
	}

	var bad Tier
	assert.Error(t, bad.UnmarshalText([]byte("legendary")))
}
