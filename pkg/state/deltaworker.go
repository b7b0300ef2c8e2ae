package state

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
)

// DeltaWorker applies collapsed branch deltas to a GameState. It implements
// collapse.StateReader, collapse.StateWriter and collapse.Transactor.
// A DeltaWorker is not safe for concurrent use.
type DeltaWorker struct {
	gs     *GameState
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ collapse.StateReader = (*DeltaWorker)(nil)
	_ collapse.StateWriter = (*DeltaWorker)(nil)
	_ collapse.Transactor  = (*DeltaWorker)(nil)
)

// NewDeltaWorker creates a worker over gs. A nil logger discards output.
func NewDeltaWorker(gs *GameState, logger *slog.Logger) *DeltaWorker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DeltaWorker{gs: gs, logger: logger, now: time.Now}
}

// GameState returns the state being mutated.
func (dw *DeltaWorker) GameState() *GameState {
	return dw.gs
}

func (dw *DeltaWorker) Snapshot(_ context.Context, t branch.DeltaType, target string) (branch.Snapshot, error) {
	return dw.gs.Snapshot(t, target), nil
}

// WithinTransaction runs fn against the worker and restores the previous
// state if fn fails.
func (dw *DeltaWorker) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx collapse.StateWriter) error) error {
	backup := dw.gs.Clone()
	if err := fn(ctx, dw); err != nil {
		*dw.gs = *backup
		dw.logger.Warn("Rolled back game state", "game_id", dw.gs.ID.String(), "error", err)
		return err
	}
	return nil
}

func (dw *DeltaWorker) touch() {
	dw.gs.UpdatedAt = dw.now()
}

func (dw *DeltaWorker) active(key string) (Entity, error) {
	e, ok := dw.gs.Entities[key]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrEntityNotFound, key)
	}
	if !e.Active {
		return Entity{}, fmt.Errorf("%w: %q", ErrEntityInactive, key)
	}
	return e, nil
}

func (dw *DeltaWorker) CreateEntity(_ context.Context, key string, spec branch.CreateEntity) error {
	if e, ok := dw.gs.Entities[key]; ok && e.Active {
		return fmt.Errorf("%w: %q", ErrEntityExists, key)
	}
	dw.gs.AddEntity(Entity{
		Key:      key,
		Name:     spec.Name,
		Kind:     spec.Kind,
		Location: spec.Location,
		Activity: spec.Activity,
		Active:   true,
	})
	dw.touch()
	dw.logger.Info("Entity created", "entity", key, "type", spec.Kind, "location", spec.Location)
	return nil
}

// DeactivateEntity marks an entity inactive. Entities are never removed so
// facts and relationships that mention them stay resolvable.
func (dw *DeltaWorker) DeactivateEntity(_ context.Context, key, reason string) error {
	e, err := dw.active(key)
	if err != nil {
		return err
	}
	e.Active = false
	dw.gs.Entities[key] = e
	dw.touch()
	dw.logger.Info("Entity deactivated", "entity", key, "reason", reason)
	return nil
}

func (dw *DeltaWorker) RelocateEntity(_ context.Context, key, location string) error {
	if location == "" {
		return fmt.Errorf("%w: empty location for %q", ErrInvalidChange, key)
	}
	e, err := dw.active(key)
	if err != nil {
		return err
	}
	from := dw.gs.EffectiveLocation(key)
	e.Location = location
	e.Holder = ""
	dw.gs.Entities[key] = e
	dw.touch()
	if from != location {
		dw.logger.Info("Location changed", "entity", key, "from", from, "to", location)
	}
	return nil
}

func (dw *DeltaWorker) UpdateEntity(_ context.Context, key string, activity, mood *string) error {
	e, err := dw.active(key)
	if err != nil {
		return err
	}
	if activity != nil {
		e.Activity = *activity
	}
	if mood != nil {
		e.Mood = *mood
	}
	dw.gs.Entities[key] = e
	dw.touch()
	return nil
}

// TransferItem moves item to exactly one of toEntity or toStorage. An item
// put into storage stays where its previous holder was.
func (dw *DeltaWorker) TransferItem(_ context.Context, item, toEntity, toStorage string) error {
	if (toEntity == "") == (toStorage == "") {
		return fmt.Errorf("%w: transfer of %q needs one destination", ErrInvalidChange, item)
	}
	it, err := dw.active(item)
	if err != nil {
		return err
	}

	from := it.Holder
	if from == "" {
		from = it.Storage
	}

	if toEntity != "" {
		if toEntity == item {
			return fmt.Errorf("%w: %q cannot hold itself", ErrInvalidChange, item)
		}
		if _, err := dw.active(toEntity); err != nil {
			return err
		}
		it.Holder = toEntity
		it.Storage = ""
		it.Location = ""
	} else {
		it.Location = dw.gs.EffectiveLocation(item)
		it.Holder = ""
		it.Storage = toStorage
	}
	dw.gs.Entities[item] = it
	dw.touch()
	dw.logger.Info("Item transferred", "item", item, "from", from, "to", toEntity+toStorage)
	return nil
}

// AdjustNeed shifts a need by amount, clamped to [MinNeed, MaxNeed].
func (dw *DeltaWorker) AdjustNeed(_ context.Context, entity, need string, amount int) error {
	e, err := dw.active(entity)
	if err != nil {
		return err
	}
	if e.Needs == nil {
		e.Needs = make(map[string]int)
	}
	e.Needs[need] = clamp(e.Needs[need]+amount, MinNeed, MaxNeed)
	dw.gs.Entities[entity] = e
	dw.touch()
	return nil
}

// AdjustRelationship shifts one dimension of from -> to, clamped to
// [MinRelationship, MaxRelationship].
func (dw *DeltaWorker) AdjustRelationship(_ context.Context, from, to, dimension string, amount int, reason string) error {
	if _, err := dw.active(from); err != nil {
		return err
	}
	if _, ok := dw.gs.Entities[to]; !ok {
		return fmt.Errorf("%w: %q", ErrEntityNotFound, to)
	}
	if dw.gs.Relationships == nil {
		dw.gs.Relationships = make(map[string]map[string]int)
	}
	k := RelationshipKey(from, to)
	dims := dw.gs.Relationships[k]
	if dims == nil {
		dims = make(map[string]int)
		dw.gs.Relationships[k] = dims
	}
	dims[dimension] = clamp(dims[dimension]+amount, MinRelationship, MaxRelationship)
	dw.touch()
	dw.logger.Debug("Relationship changed", "from", from, "to", to, "dimension", dimension,
		"value", dims[dimension], "reason", reason)
	return nil
}

// RecordFact stores a fact, replacing any earlier value for the same
// subject and predicate.
func (dw *DeltaWorker) RecordFact(_ context.Context, subject, predicate, value, category string, secret bool) error {
	if predicate == "" {
		return fmt.Errorf("%w: fact about %q has no predicate", ErrInvalidChange, subject)
	}
	f := Fact{Subject: subject, Predicate: predicate, Value: value, Category: category, Secret: secret, At: dw.gs.Clock}
	for i, existing := range dw.gs.Facts {
		if existing.Subject == subject && existing.Predicate == predicate {
			dw.gs.Facts[i] = f
			dw.touch()
			return nil
		}
	}
	dw.gs.Facts = append(dw.gs.Facts, f)
	dw.touch()
	return nil
}

func (dw *DeltaWorker) AdvanceClock(_ context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: clock must advance, got %d minutes", ErrInvalidChange, minutes)
	}
	dw.gs.Clock += minutes
	dw.touch()
	return nil
}
