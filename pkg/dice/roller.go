package dice

// Roller rolls expressions against a Source.
type Roller struct {
	src Source
}

// NewRoller returns a Roller drawing from src. A nil src gets a
// time-seeded source.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = NewSource(0)
	}
	return &Roller{src: src}
}

func (r *Roller) die(sides int) int {
	return r.src.Intn(sides) + 1
}

// Roll draws Count independent dice in [1, Sides] and adds the modifier.
// Callers holding untrusted expressions check them with CheckRollable first.
func (r *Roller) Roll(expr Expression) RollResult {
	results := make([]int, max(expr.Count, 0))
	total := 0
	for i := range results {
		results[i] = r.die(expr.Sides)
		total += results[i]
	}

	return RollResult{
		Expression: expr,
		Dice:       results,
		Modifier:   expr.Modifier,
		Total:      total + expr.Modifier,
	}
}

// RollWithAdvantage rolls expr, keeping the higher (advantage) or lower
// (disadvantage) of two draws. Advantage only applies to single-die
// expressions; anything else behaves like Roll.
func (r *Roller) RollWithAdvantage(expr Expression, mode Advantage) RollResult {
	if mode == Normal || expr.Count != 1 {
		return r.Roll(expr)
	}

	first := r.die(expr.Sides)
	second := r.die(expr.Sides)

	kept, dropped := first, second
	switch mode {
	case WithAdvantage:
		if second > first {
			kept, dropped = second, first
		}
	case WithDisadvantage:
		if second < first {
			kept, dropped = second, first
		}
	}

	return RollResult{
		Expression: expr,
		Dice:       []int{kept},
		Modifier:   expr.Modifier,
		Total:      kept + expr.Modifier,
		Discarded:  &dropped,
		Advantage:  mode,
	}
}

// RollNotation parses notation and rolls it. Counts above MaxRollDice are
// rejected before any die is drawn.
func (r *Roller) RollNotation(notation string, mode Advantage) (RollResult, error) {
	expr, err := Parse(notation)
	if err != nil {
		return RollResult{}, err
	}
	if err := expr.CheckRollable(); err != nil {
		return RollResult{}, err
	}
	return r.RollWithAdvantage(expr, mode), nil
}
