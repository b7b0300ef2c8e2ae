package state

import (
	"strings"

	"github.com/jwebster45206/branch-engine/pkg/branch"
)

// Snapshot reports the live fields a delta of type t could change on target.
// A missing entity reports only exists=false.
func (gs *GameState) Snapshot(t branch.DeltaType, target string) branch.Snapshot {
	if t == branch.DeltaAdvanceTime {
		return branch.Snapshot{branch.SnapValue: branch.Int(gs.Clock)}
	}

	e, ok := gs.Entities[target]
	if !ok {
		return branch.Snapshot{branch.SnapExists: branch.Bool(false)}
	}

	s := branch.Snapshot{
		branch.SnapExists: branch.Bool(true),
		branch.SnapActive: branch.Bool(e.Active),
	}

	switch t {
	case branch.DeltaTransferItem:
		s[branch.SnapHolder] = e.Holder
		s[branch.SnapOwner] = e.Owner
		s[branch.SnapStorage] = e.Storage
		s[branch.SnapLocation] = gs.EffectiveLocation(target)
	case branch.DeltaUpdateNeed:
		for need, v := range e.Needs {
			s[need] = branch.Int(v)
		}
	case branch.DeltaUpdateRelationship:
		prefix := target + "->"
		for k, dims := range gs.Relationships {
			other, ok := strings.CutPrefix(k, prefix)
			if !ok || other == "" {
				continue
			}
			for dim, v := range dims {
				s[other+"."+dim] = branch.Int(v)
			}
		}
	case branch.DeltaRecordFact:
		for _, f := range gs.Facts {
			if f.Subject == target {
				s[f.Predicate] = f.Value
			}
		}
	default:
		s[branch.SnapLocation] = gs.EffectiveLocation(target)
		s[branch.SnapActivity] = e.Activity
		s[branch.SnapMood] = e.Mood
	}
	return s
}
