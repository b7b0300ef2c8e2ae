package branch

import (
	"maps"
	"slices"
	"strconv"
)

// Snapshot keys reported by world-state readers.
const (
	SnapExists    = "exists"
	SnapLocation  = "location"
	SnapActive    = "active"
	SnapActivity  = "activity"
	SnapMood      = "mood"
	SnapHolder    = "holder"
	SnapOwner     = "owner"
	SnapStorage   = "storage"
	SnapValue     = "value"
	SnapDimension = "dimension"
)

// Snapshot is a flat view of the fields a delta could change. Values are
// canonical strings: booleans as "true"/"false", numbers in base 10.
type Snapshot map[string]string

// Bool formats a boolean snapshot value.
func Bool(b bool) string { return strconv.FormatBool(b) }

// Int formats an integer snapshot value.
func Int(n int) string { return strconv.Itoa(n) }

// Mismatches returns the keys of s whose values differ from actual, sorted.
// Keys absent from s are not compared; an expected key missing from actual
// is a mismatch.
func (s Snapshot) Mismatches(actual Snapshot) []string {
	var keys []string
	for k, want := range s {
		got, ok := actual[k]
		if !ok || got != want {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Matches reports whether every expected key agrees with actual.
func (s Snapshot) Matches(actual Snapshot) bool {
	return len(s.Mismatches(actual)) == 0
}

// Clone returns a copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}
