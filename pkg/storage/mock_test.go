package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/branch-engine/pkg/actor"
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/state"
)

func TestMockStorage_GameStateIsCopied(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	gs := state.NewGameState()
	gs.AddEntity(state.Entity{Key: "player", Location: "tavern", Active: true})
	require.NoError(t, m.SaveGameState(ctx, gs.ID, gs))

	gs.Entities["player"] = state.Entity{Key: "player", Location: "moon"}
	loaded, err := m.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, "tavern", loaded.Entities["player"].Location)

	require.NoError(t, m.DeleteGameState(ctx, gs.ID))
	loaded, err = m.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.Error(t, m.SaveGameState(ctx, gs.ID, nil))
}

func TestMockStorage_Branches(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	gameID := uuid.New()

	b, err := branch.New(gameID, branch.Action{Type: "talk"}, branch.Decision{},
		map[branch.Category]branch.OutcomeVariant{branch.Success: {Narrative: "Hello."}})
	require.NoError(t, err)
	require.NoError(t, m.SaveBranch(ctx, b))

	ids, err := m.ListBranches(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, ids)

	require.NoError(t, b.BeginCollapse())
	require.NoError(t, b.CompleteCollapse(branch.Success))
	require.NoError(t, m.CommitCollapse(ctx, nil, b))

	loaded, err := m.LoadBranch(ctx, gameID, b.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCollapsed())

	m.SetCommitError(errors.New("boom"))
	assert.EqualError(t, m.CommitCollapse(ctx, nil, b), "boom")

	require.NoError(t, m.DeleteBranch(ctx, gameID, b.ID))
	loaded, err = m.LoadBranch(ctx, gameID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMockStorage_LockGame(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	id := uuid.New()

	unlock, err := m.LockGame(ctx, id, time.Minute)
	require.NoError(t, err)
	_, err = m.LockGame(ctx, id, time.Minute)
	assert.ErrorIs(t, err, ErrGameLocked)
	require.NoError(t, unlock(ctx))
	_, err = m.LockGame(ctx, id, time.Minute)
	assert.NoError(t, err)
}

func TestMockStorage_PCSpecs(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	m.AddPCSpec("vex", &actor.PCSpec{ID: "vex", Name: "Vex"})
	m.AddPCSpec("ana", &actor.PCSpec{ID: "ana", Name: "Ana"})

	ids, err := m.ListPCs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "vex"}, ids)

	spec, err := m.GetPCSpec(ctx, "vex")
	require.NoError(t, err)
	assert.Equal(t, "Vex", spec.Name)

	_, err = m.GetPCSpec(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPCNotFound)

	m.SetPingError(errors.New("down"))
	assert.Error(t, m.Ping(ctx))
}
