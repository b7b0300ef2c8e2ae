// Package state holds the reference world model a branch collapses
// against: entities, items, needs, relationships, facts and a clock.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEntityExists   = errors.New("entity already exists")
	ErrEntityInactive = errors.New("entity is inactive")
	ErrInvalidChange  = errors.New("invalid state change")
)

// Bounds for needs and relationship dimensions.
const (
	MinNeed         = 0
	MaxNeed         = 100
	MinRelationship = -100
	MaxRelationship = 100
)

// Entity is anything addressable by key: characters, items, doors.
// Items are held by an entity or kept in a named storage, never both.
type Entity struct {
	Key      string         `json:"key"`
	Name     string         `json:"name"`
	Kind     string         `json:"entity_type,omitempty"`
	Location string         `json:"location,omitempty"`
	Activity string         `json:"activity,omitempty"`
	Mood     string         `json:"mood,omitempty"`
	Active   bool           `json:"active"`
	Holder   string         `json:"holder,omitempty"`
	Owner    string         `json:"owner,omitempty"`
	Storage  string         `json:"storage,omitempty"`
	Needs    map[string]int `json:"needs,omitempty"`
}

// Fact is a recorded piece of world knowledge about a subject.
type Fact struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Value     string `json:"value"`
	Category  string `json:"category,omitempty"`
	Secret    bool   `json:"is_secret,omitempty"`
	At        int    `json:"at_minute"`
}

// GameState is the world state of one game session.
type GameState struct {
	ID            uuid.UUID                 `json:"id"`
	Entities      map[string]Entity         `json:"entities"`
	Relationships map[string]map[string]int `json:"relationships,omitempty"` // keyed by RelationshipKey
	Facts         []Fact                    `json:"facts,omitempty"`
	Clock         int                       `json:"clock_minutes"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func NewGameState() *GameState {
	return &GameState{
		ID:            uuid.New(),
		Entities:      make(map[string]Entity),
		Relationships: make(map[string]map[string]int),
	}
}

// RelationshipKey is the map key for the directed relationship from -> to.
func RelationshipKey(from, to string) string {
	return from + "->" + to
}

// Entity returns the entity for key.
func (gs *GameState) Entity(key string) (Entity, bool) {
	e, ok := gs.Entities[key]
	return e, ok
}

// AddEntity inserts or replaces an entity. Used to seed a world.
func (gs *GameState) AddEntity(e Entity) {
	if gs.Entities == nil {
		gs.Entities = make(map[string]Entity)
	}
	gs.Entities[e.Key] = e
}

// EffectiveLocation is where an entity is. Held items are wherever their
// holder is.
func (gs *GameState) EffectiveLocation(key string) string {
	seen := map[string]bool{}
	for {
		e, ok := gs.Entities[key]
		if !ok || seen[key] {
			return ""
		}
		if e.Holder == "" {
			return e.Location
		}
		seen[key] = true
		key = e.Holder
	}
}

// Relationship returns the value of one dimension from -> to.
func (gs *GameState) Relationship(from, to, dimension string) int {
	return gs.Relationships[RelationshipKey(from, to)][dimension]
}

// Fact returns the most recent value for subject and predicate.
func (gs *GameState) Fact(subject, predicate string) (Fact, bool) {
	for i := len(gs.Facts) - 1; i >= 0; i-- {
		f := gs.Facts[i]
		if f.Subject == subject && f.Predicate == predicate {
			return f, true
		}
	}
	return Fact{}, false
}

// Clone returns a deep copy.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Entities = make(map[string]Entity, len(gs.Entities))
	for k, e := range gs.Entities {
		e.Needs = maps.Clone(e.Needs)
		out.Entities[k] = e
	}
	out.Relationships = make(map[string]map[string]int, len(gs.Relationships))
	for k, dims := range gs.Relationships {
		out.Relationships[k] = maps.Clone(dims)
	}
	out.Facts = append([]Fact(nil), gs.Facts...)
	return &out
}

// Load parses a serialized game state.
func Load(data []byte) (*GameState, error) {
	var gs GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	if gs.Entities == nil {
		gs.Entities = make(map[string]Entity)
	}
	if gs.Relationships == nil {
		gs.Relationships = make(map[string]map[string]int)
	}
	return &gs, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
