package check

import "fmt"

// Tier buckets a check's margin for narration.
type Tier int

const (
	Catastrophic Tier = iota - 3
	ClearFailure
	PartialFailure
	BareSuccess
	NarrowSuccess
	ClearSuccess
	Exceptional
)

// TierFor maps a margin (total - DC) to its outcome tier.
func TierFor(margin int) Tier {
	switch {
	case margin >= 10:
		return Exceptional
	case margin >= 5:
		return ClearSuccess
	case margin >= 1:
		return NarrowSuccess
	case margin == 0:
		return BareSuccess
	case margin >= -4:
		return PartialFailure
	case margin >= -9:
		return ClearFailure
	default:
		return Catastrophic
	}
}

// IsSuccess reports whether the tier is on the success side of the table.
func (t Tier) IsSuccess() bool {
	return t >= BareSuccess
}

func (t Tier) String() string {
	switch t {
	case Exceptional:
		return "exceptional"
	case ClearSuccess:
		return "clear_success"
	case NarrowSuccess:
		return "narrow_success"
	case BareSuccess:
		return "bare_success"
	case PartialFailure:
		return "partial_failure"
	case ClearFailure:
		return "clear_failure"
	case Catastrophic:
		return "catastrophic"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	for candidate := Catastrophic; candidate <= Exceptional; candidate++ {
		if candidate.String() == string(text) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome tier: %q", text)
}
