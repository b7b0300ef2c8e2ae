package collapse

import (
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/check"
)

// CategoryFor maps a check result onto the variants a branch actually has.
//
//	critical success -> critical_success, else success
//	success          -> success
//	critical failure -> critical_failure, else failure, else success
//	failure          -> failure, else success
func CategoryFor(b *branch.QuantumBranch, res check.Result) branch.Category {
	has := func(c branch.Category) bool {
		_, ok := b.Variants[c]
		return ok
	}

	switch {
	case res.CriticalSuccess:
		if has(branch.CriticalSuccess) {
			return branch.CriticalSuccess
		}
		return branch.Success
	case res.Success:
		return branch.Success
	case res.CriticalFailure:
		if has(branch.CriticalFailure) {
			return branch.CriticalFailure
		}
		if has(branch.Failure) {
			return branch.Failure
		}
		return branch.Success
	default:
		if has(branch.Failure) {
			return branch.Failure
		}
		return branch.Success
	}
}

// defaultCategory is success, or the first present variant when a branch
// was built without one.
func defaultCategory(b *branch.QuantumBranch) (branch.Category, bool) {
	for _, c := range branch.Categories {
		if _, ok := b.Variants[c]; ok {
			return c, true
		}
	}
	return "", false
}
