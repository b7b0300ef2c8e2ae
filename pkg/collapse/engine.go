// Package collapse resolves quantum branches at the moment the player acts:
// it rolls if needed, selects a variant, checks the world has not moved
// since the variants were prepared, and applies the winning state deltas.
//
// The engine assumes exclusive access to a session's world state for the
// duration of one collapse. Callers serialize collapses per session.
package collapse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/check"
	"github.com/jwebster45206/branch-engine/pkg/dice"
)

// Options tune one collapse.
type Options struct {
	Advantage       dice.Advantage
	SkipValidation  bool
	SkipApplication bool
}

// Result describes a committed collapse.
type Result struct {
	BranchID         uuid.UUID             `json:"branch_id"`
	Category         branch.Category       `json:"category"`
	Variant          branch.OutcomeVariant `json:"-"`
	Check            *check.Result         `json:"check,omitempty"`
	Skill            string                `json:"skill,omitempty"`
	Attribute        string                `json:"attribute,omitempty"`
	RawNarrative     string                `json:"raw_narrative"`
	DisplayNarrative string                `json:"narrative"`
	Refs             []branch.EntityRef    `json:"entity_refs,omitempty"`
	Applied          int                   `json:"applied_deltas"`
	Skipped          int                   `json:"skipped_deltas"`
	TimeMinutes      int                   `json:"time_passed_minutes"`
	TwistApplied     bool                  `json:"twist_applied"`
	Duration         time.Duration         `json:"duration"`
}

// Rolled reports whether dice were actually thrown.
func (r *Result) Rolled() bool {
	return r.Check != nil && r.Check.Roll != nil
}

// Engine collapses branches against one world.
type Engine struct {
	reader  StateReader
	writer  StateWriter
	roller  *dice.Roller
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewEngine creates an engine. reader and writer may be nil when every
// collapse skips validation or application respectively. A nil logger
// discards output.
func NewEngine(reader StateReader, writer StateWriter, roller *dice.Roller, logger *slog.Logger) *Engine {
	if roller == nil {
		roller = dice.NewRoller(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		reader:  reader,
		writer:  writer,
		roller:  roller,
		logger:  logger,
		metrics: NewMetrics(),
		now:     time.Now,
	}
}

// WithMetrics shares an aggregate across engines.
// Returns the Engine for method chaining
func (e *Engine) WithMetrics(m *Metrics) *Engine {
	e.metrics = m
	return e
}

// Metrics returns the engine's aggregate.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Collapse selects, validates and applies one variant of b. On success b is
// marked collapsed with the chosen category. A stale or failed application
// marks b aborted; collapsing a branch that is not prepared is an error.
func (e *Engine) Collapse(ctx context.Context, b *branch.QuantumBranch, actor Actor, opts Options) (*Result, error) {
	start := e.now()
	log := e.logger.With("branch_id", b.ID.String(), "game_id", b.GameID.String())

	if err := b.BeginCollapse(); err != nil {
		e.metrics.recordFailure(ReasonRejected)
		log.Warn("Rejected collapse", "status", b.Status, "error", err)
		return nil, err
	}

	res, err := e.selectVariant(b, actor, opts.Advantage)
	if err != nil {
		b.AbortCollapse()
		e.metrics.recordFailure(ReasonRejected)
		return nil, err
	}

	if !opts.SkipValidation {
		if err := e.validate(ctx, b, res.Category, res.Variant); err != nil {
			b.AbortCollapse()
			e.metrics.recordFailure(ReasonStale)
			log.Warn("Branch is stale", "category", res.Category, "error", err)
			return nil, err
		}
	}

	if !opts.SkipApplication {
		applied, skipped, err := e.apply(ctx, b, res.Category, res.Variant)
		if err != nil {
			b.AbortCollapse()
			e.metrics.recordFailure(ReasonApply)
			log.Error("Failed to apply branch deltas", "category", res.Category, "error", err)
			return nil, err
		}
		res.Applied = applied
		res.Skipped = skipped
	}

	res.RawNarrative = res.Variant.Narrative
	res.DisplayNarrative = branch.StripMarkup(res.Variant.Narrative)
	res.Refs = branch.ExtractRefs(res.Variant.Narrative)
	res.TimeMinutes = res.Variant.TimeMinutes
	res.TwistApplied = b.Decision.IsTwist()

	if err := b.CompleteCollapse(res.Category); err != nil {
		return nil, err
	}
	res.Duration = e.now().Sub(start)
	e.metrics.recordCollapse(res.Category, res.Rolled(), res.TwistApplied, res.Duration)

	attrs := []any{
		"category", res.Category,
		"applied", res.Applied,
		"twist", res.TwistApplied,
	}
	if res.Check != nil {
		attrs = append(attrs, "dc", res.Check.DC, "margin", res.Check.Margin, "auto_success", res.Check.AutoSuccess)
	}
	log.Info("Branch collapsed", attrs...)

	return res, nil
}

func (e *Engine) selectVariant(b *branch.QuantumBranch, actor Actor, adv dice.Advantage) (*Result, error) {
	res := &Result{BranchID: b.ID}

	pick := func(c branch.Category) (*Result, error) {
		v, ok := b.Variant(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", branch.ErrMissingSuccess, b.ID)
		}
		res.Category = c
		res.Variant = v
		return res, nil
	}

	if !b.RequiresRoll() {
		c, ok := defaultCategory(b)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no variants", branch.ErrMissingSuccess, b.ID)
		}
		return pick(c)
	}

	rollVariant, ok := b.RollVariant()
	if !ok {
		return pick(branch.Success)
	}

	attr := rollVariant.Attribute
	if attr == "" {
		attr = check.GoverningAttribute(rollVariant.Skill)
	}
	var attrMod, skillMod int
	if actor != nil {
		attrMod = actor.AttributeModifier(attr)
		skillMod = actor.SkillBonus(rollVariant.Skill)
	}

	chk := check.Make(e.roller, rollVariant.DC, attrMod, skillMod, adv)
	res.Check = &chk
	res.Skill = rollVariant.Skill
	res.Attribute = attr
	return pick(CategoryFor(b, chk))
}

func (e *Engine) validate(ctx context.Context, b *branch.QuantumBranch, c branch.Category, v branch.OutcomeVariant) error {
	for i, d := range v.Deltas {
		if len(d.Expected) == 0 {
			continue
		}
		if d.Type == branch.DeltaUnknown {
			e.logger.Warn("Skipping validation of unknown delta type", "delta_type", d.Tag(), "target", d.Target)
			continue
		}
		if e.reader == nil {
			return ErrNoStateReader
		}

		actual, err := e.reader.Snapshot(ctx, d.Type, d.Target)
		if err != nil {
			return fmt.Errorf("failed to read state for %s delta %d on %q: %w", d.Type, i, d.Target, err)
		}
		if fields := d.Expected.Mismatches(actual); len(fields) > 0 {
			return &StaleStateError{
				BranchID: b.ID,
				Category: c,
				Index:    i,
				Delta:    d,
				Expected: d.Expected.Clone(),
				Actual:   actual.Clone(),
				Fields:   fields,
			}
		}
	}
	return nil
}

func (e *Engine) apply(ctx context.Context, b *branch.QuantumBranch, c branch.Category, v branch.OutcomeVariant) (int, int, error) {
	if len(v.Deltas) == 0 {
		return 0, 0, nil
	}
	if e.writer == nil {
		return 0, 0, ErrNoStateWriter
	}

	var applied, skipped int
	run := func(ctx context.Context, w StateWriter) error {
		applied, skipped = 0, 0
		for i, d := range v.Deltas {
			ok, err := e.applyDelta(ctx, w, d)
			if err != nil {
				return &ApplyError{
					BranchID: b.ID,
					Category: c,
					Index:    i,
					Delta:    d,
					Applied:  applied,
					Err:      err,
				}
			}
			if ok {
				applied++
			} else {
				skipped++
			}
		}
		return nil
	}

	if tx, ok := e.writer.(Transactor); ok {
		err := tx.WithinTransaction(ctx, run)
		var ae *ApplyError
		if errors.As(err, &ae) {
			ae.RolledBack = true
		}
		return applied, skipped, err
	}

	e.logger.Debug("Writer is not transactional; a failure leaves earlier deltas applied",
		"branch_id", b.ID.String(), "deltas", len(v.Deltas))
	return applied, skipped, run(ctx, e.writer)
}

// applyDelta dispatches one delta. It returns false for deltas it skipped.
func (e *Engine) applyDelta(ctx context.Context, w StateWriter, d branch.StateDelta) (bool, error) {
	switch p := d.Payload.(type) {
	case *branch.CreateEntity:
		return true, w.CreateEntity(ctx, d.Target, *p)
	case *branch.DeleteEntity:
		return true, w.DeactivateEntity(ctx, d.Target, p.Reason)
	case *branch.UpdateEntity:
		return true, w.UpdateEntity(ctx, d.Target, p.Activity, p.Mood)
	case *branch.UpdateLocation:
		return true, w.RelocateEntity(ctx, d.Target, p.To)
	case *branch.TransferItem:
		return true, w.TransferItem(ctx, d.Target, p.ToEntity, p.ToStorage)
	case *branch.UpdateNeed:
		return true, w.AdjustNeed(ctx, d.Target, p.Need, p.Amount)
	case *branch.UpdateRelationship:
		return true, w.AdjustRelationship(ctx, d.Target, p.Other, p.Dimension, p.Amount, p.Reason)
	case *branch.RecordFact:
		return true, w.RecordFact(ctx, d.Target, p.Predicate, p.Value, p.Category, p.Secret)
	case *branch.AdvanceTime:
		return true, w.AdvanceClock(ctx, p.Minutes)
	default:
		e.logger.Warn("Skipping unknown delta type", "delta_type", d.Tag(), "target", d.Target)
		return false, nil
	}
}
