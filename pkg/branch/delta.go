package branch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DeltaType tags the kind of world change a StateDelta carries.
type DeltaType int

const (
	DeltaUnknown DeltaType = iota
	DeltaCreateEntity
	DeltaDeleteEntity
	DeltaUpdateEntity
	DeltaTransferItem
	DeltaUpdateNeed
	DeltaUpdateRelationship
	DeltaRecordFact
	DeltaUpdateLocation
	DeltaAdvanceTime
)

var deltaTypeNames = map[DeltaType]string{
	DeltaCreateEntity:       "create_entity",
	DeltaDeleteEntity:       "delete_entity",
	DeltaUpdateEntity:       "update_entity",
	DeltaTransferItem:       "transfer_item",
	DeltaUpdateNeed:         "update_need",
	DeltaUpdateRelationship: "update_relationship",
	DeltaRecordFact:         "record_fact",
	DeltaUpdateLocation:     "update_location",
	DeltaAdvanceTime:        "advance_time",
}

func (t DeltaType) String() string {
	if name, ok := deltaTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseDeltaType returns DeltaUnknown for tags outside the closed set.
func ParseDeltaType(s string) DeltaType {
	for t, name := range deltaTypeNames {
		if name == s {
			return t
		}
	}
	return DeltaUnknown
}

// ErrInvalidDelta is matched by delta validation failures.
var ErrInvalidDelta = errors.New("invalid state delta")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDelta, fmt.Sprintf(format, args...))
}

// Payload is the type-specific body of a StateDelta.
type Payload interface {
	DeltaType() DeltaType
	Validate() error
}

// CreateEntity brings a new entity into the world under the delta target key.
type CreateEntity struct {
	Name     string `json:"name"`
	Kind     string `json:"entity_type"`
	Location string `json:"location,omitempty"`
	Activity string `json:"activity,omitempty"`
}

func (*CreateEntity) DeltaType() DeltaType { return DeltaCreateEntity }

func (p *CreateEntity) Validate() error {
	if p.Name == "" {
		return invalid("create_entity requires name")
	}
	if p.Kind == "" {
		return invalid("create_entity requires entity_type")
	}
	return nil
}

// DeleteEntity deactivates the target entity.
type DeleteEntity struct {
	Reason string `json:"reason,omitempty"`
}

func (*DeleteEntity) DeltaType() DeltaType { return DeltaDeleteEntity }
func (*DeleteEntity) Validate() error      { return nil }

// UpdateEntity changes an entity's current activity or mood.
type UpdateEntity struct {
	Activity *string `json:"activity,omitempty"`
	Mood     *string `json:"mood,omitempty"`
}

func (*UpdateEntity) DeltaType() DeltaType { return DeltaUpdateEntity }

func (p *UpdateEntity) Validate() error {
	if p.Activity == nil && p.Mood == nil {
		return invalid("update_entity requires activity or mood")
	}
	return nil
}

// TransferItem moves the target item to an entity or a named storage.
type TransferItem struct {
	ToEntity  string `json:"to_entity,omitempty"`
	ToStorage string `json:"to_storage,omitempty"`
}

func (*TransferItem) DeltaType() DeltaType { return DeltaTransferItem }

func (p *TransferItem) Validate() error {
	if (p.ToEntity == "") == (p.ToStorage == "") {
		return invalid("transfer_item requires exactly one of to_entity or to_storage")
	}
	return nil
}

// UpdateNeed adjusts a bounded need of the target entity by a signed amount.
type UpdateNeed struct {
	Need   string `json:"need"`
	Amount int    `json:"amount"`
}

func (*UpdateNeed) DeltaType() DeltaType { return DeltaUpdateNeed }

func (p *UpdateNeed) Validate() error {
	if p.Need == "" {
		return invalid("update_need requires need")
	}
	return nil
}

// UpdateRelationship adjusts one dimension of the target entity's attitude
// toward Other.
type UpdateRelationship struct {
	Other     string `json:"other"`
	Dimension string `json:"dimension"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason,omitempty"`
}

func (*UpdateRelationship) DeltaType() DeltaType { return DeltaUpdateRelationship }

func (p *UpdateRelationship) Validate() error {
	if p.Other == "" {
		return invalid("update_relationship requires other")
	}
	if p.Dimension == "" {
		return invalid("update_relationship requires dimension")
	}
	return nil
}

// RecordFact records or updates a subject-predicate-value fact. The delta
// target is the subject.
type RecordFact struct {
	Predicate string `json:"predicate"`
	Value     string `json:"value"`
	Category  string `json:"category,omitempty"`
	Secret    bool   `json:"is_secret,omitempty"`
}

func (*RecordFact) DeltaType() DeltaType { return DeltaRecordFact }

func (p *RecordFact) Validate() error {
	if p.Predicate == "" {
		return invalid("record_fact requires predicate")
	}
	if p.Value == "" {
		return invalid("record_fact requires value")
	}
	return nil
}

// UpdateLocation moves the target entity to another location.
type UpdateLocation struct {
	To string `json:"location"`
}

func (*UpdateLocation) DeltaType() DeltaType { return DeltaUpdateLocation }

func (p *UpdateLocation) Validate() error {
	if p.To == "" {
		return invalid("update_location requires location")
	}
	return nil
}

// AdvanceTime moves the shared game clock forward.
type AdvanceTime struct {
	Minutes int `json:"minutes"`
}

func (*AdvanceTime) DeltaType() DeltaType { return DeltaAdvanceTime }

func (p *AdvanceTime) Validate() error {
	if p.Minutes <= 0 {
		return invalid("advance_time requires positive minutes")
	}
	return nil
}

func newPayload(t DeltaType) Payload {
	switch t {
	case DeltaCreateEntity:
		return &CreateEntity{}
	case DeltaDeleteEntity:
		return &DeleteEntity{}
	case DeltaUpdateEntity:
		return &UpdateEntity{}
	case DeltaTransferItem:
		return &TransferItem{}
	case DeltaUpdateNeed:
		return &UpdateNeed{}
	case DeltaUpdateRelationship:
		return &UpdateRelationship{}
	case DeltaRecordFact:
		return &RecordFact{}
	case DeltaUpdateLocation:
		return &UpdateLocation{}
	case DeltaAdvanceTime:
		return &AdvanceTime{}
	default:
		return nil
	}
}

// StateDelta is one typed, targeted world change. Deltas are inert data;
// only the collapse engine applies them.
//
// A delta with an unrecognised tag decodes with Type DeltaUnknown and the
// raw tag kept in RawType, so it can be logged and skipped.
type StateDelta struct {
	Type     DeltaType
	RawType  string
	Target   string
	Payload  Payload
	Expected Snapshot

	// RawChanges holds the undecoded changes of an unknown delta.
	RawChanges json.RawMessage
}

// NewDelta builds a delta for target from a payload.
func NewDelta(target string, p Payload) StateDelta {
	return StateDelta{Type: p.DeltaType(), RawType: p.DeltaType().String(), Target: target, Payload: p}
}

// Expect returns a copy of d carrying an expected prior-state snapshot.
func (d StateDelta) Expect(s Snapshot) StateDelta {
	d.Expected = s
	return d
}

// Tag returns the wire tag, preserving unknown tags.
func (d StateDelta) Tag() string {
	if d.Type == DeltaUnknown {
		return d.RawType
	}
	return d.Type.String()
}

// Validate checks the payload matches the type and is complete.
func (d StateDelta) Validate() error {
	if d.Type == DeltaUnknown {
		return nil
	}
	if d.Payload == nil {
		return invalid("%s has no changes", d.Type)
	}
	if d.Payload.DeltaType() != d.Type {
		return invalid("%s carries %s changes", d.Type, d.Payload.DeltaType())
	}
	if d.Type != DeltaAdvanceTime && d.Target == "" {
		return invalid("%s requires target_key", d.Type)
	}
	return d.Payload.Validate()
}

type wireDelta struct {
	Type     string          `json:"delta_type"`
	Target   string          `json:"target_key,omitempty"`
	Changes  json.RawMessage `json:"changes,omitempty"`
	Expected Snapshot        `json:"expected_state,omitempty"`
}

func (d StateDelta) MarshalJSON() ([]byte, error) {
	w := wireDelta{Type: d.Tag(), Target: d.Target, Expected: d.Expected, Changes: d.RawChanges}
	if d.Payload != nil {
		raw, err := json.Marshal(d.Payload)
		if err != nil {
			return nil, err
		}
		w.Changes = raw
	}
	return json.Marshal(w)
}

func (d *StateDelta) UnmarshalJSON(data []byte) error {
	var w wireDelta
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := StateDelta{
		Type:     ParseDeltaType(w.Type),
		RawType:  w.Type,
		Target:   w.Target,
		Expected: w.Expected,
	}
	if out.Type != DeltaUnknown {
		p := newPayload(out.Type)
		if len(w.Changes) > 0 {
			if err := json.Unmarshal(w.Changes, p); err != nil {
				return fmt.Errorf("%s changes: %w", out.Type, err)
			}
		}
		out.Payload = p
		if err := out.Validate(); err != nil {
			return err
		}
	} else {
		out.RawChanges = w.Changes
	}

	*d = out
	return nil
}
