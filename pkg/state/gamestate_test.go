package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_CloneIsDeep(t *testing.T) {
	gs := tavern()
	gs.Relationships[RelationshipKey("player", "guard_01")] = map[string]int{"trust": 10}
	gs.Facts = []Fact{{Subject: "player", Predicate: "name", Value: "Vex"}}

	c := gs.Clone()
	c.Entities["player"].Needs["stamina"] = 1
	c.Relationships[RelationshipKey("player", "guard_01")]["trust"] = -10
	c.Facts[0].Value = "Nobody"
	delete(c.Entities, "guard_01")

	assert.Equal(t, 50, gs.Entities["player"].Needs["stamina"])
	assert.Equal(t, 10, gs.Relationship("player", "guard_01", "trust"))
	assert.Equal(t, "Vex", gs.Facts[0].Value)
	assert.Contains(t, gs.Entities, "guard_01")
}

func TestGameState_EffectiveLocationCycle(t *testing.T) {
	gs := NewGameState()
	gs.AddEntity(Entity{Key: "a", Holder: "b", Active: true})
	gs.AddEntity(Entity{Key: "b", Holder: "a", Active: true})
	assert.Equal(t, "", gs.EffectiveLocation("a"))
	assert.Equal(t, "", gs.EffectiveLocation("missing"))
}

func TestGameState_LoadRoundTrip(t *testing.T) {
	gs := tavern()
	gs.Clock = 42
	data, err := json.Marshal(gs)
	require.NoError(t, err)

	back, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, gs.ID, back.ID)
	assert.Equal(t, 42, back.Clock)
	assert.Equal(t, "guard_01", back.Entities["iron_key"].Holder)
	assert.NotNil(t, back.Relationships)

	_, err = Load([]byte("{"))
	assert.Error(t, err)
}
