package branch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single ref", "You hand [old_tom:Old Tom] the coin.", "You hand Old Tom the coin."},
		{"multiple refs", "[guard_01:The guard] eyes [iron_key:the key].", "The guard eyes the key."},
		{"no refs", "Nothing happens.", "Nothing happens."},
		{"uppercase key is not markup", "[Tom:Tom] waves.", "[Tom:Tom] waves."},
		{"empty", "", ""},
		{"display text with dollar", "[vault:$500 vault] opens.", "$500 vault opens."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkup(tt.input))
		})
	}
}

func TestExtractRefs(t *testing.T) {
	refs := ExtractRefs("[guard_01:The guard] eyes [iron_key:the key] and [guard_01:him].")
	assert.Equal(t, []EntityRef{
		{Key: "guard_01", Text: "The guard"},
		{Key: "iron_key", Text: "the key"},
		{Key: "guard_01", Text: "him"},
	}, refs)

	assert.Empty(t, ExtractRefs("plain text"))
}
