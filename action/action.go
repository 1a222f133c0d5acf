// Package action is the per-action state transition engine (C4): a closed
// set of action kinds, each a total, transactional transform on a FarmState
// copy.
//
// Actions are a closed sum type, not a string tag dispatched through a
// handler registry: Action.Variant is always one of the fixed set of
// unexported-sealed implementations this package defines (PlantedPayload,
// HarvestedPayload, ChoppedPayload, CraftedPayload, SoldPayload,
// RedeemedPayload), and UnmarshalJSON is the one place that switches on the
// wire "type" string to pick which of them to decode into. An unrecognized
// tag fails right there, as a decoding error — once an Action value exists
// in memory, applying it is a single interface method call, never a map
// lookup or a runtime type switch on an open set.
package action

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type is the wire discriminator for a Variant. It only appears at the JSON
// boundary; in-memory code dispatches on the concrete Variant via Apply, not
// by switching on Type.
type Type string

const (
	TypePlanted   Type = "item.planted"
	TypeHarvested Type = "item.harvested"
	TypeChopped   Type = "tree.chopped"
	TypeCrafted   Type = "item.crafted"
	TypeSold      Type = "item.sell"
	TypeRedeemed  Type = "item.redeemed"
)

// Variant is the closed set of action kinds spec §3 names. sealed is
// unexported so no package outside action can add a new implementation —
// the set of Variants this dispatcher knows about is fixed at compile time,
// and decodeVariant's switch below is exhaustive over it.
type Variant interface {
	ActionType() Type
	Apply(ctx *Context) error
	sealed()
}

// Action is one submitted user intent: a wall-clock timestamp plus a
// decoded Variant.
type Action struct {
	CreatedAt time.Time
	Variant   Variant
}

type actionWire struct {
	CreatedAt time.Time       `json:"createdAt"`
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// UnmarshalJSON exhaustively switches on the wire type tag in decodeVariant
// to pick the one Variant implementation it names. An unrecognized tag
// yields ErrUnknownAction from right here — a decoding error, never a
// dispatch-time branch.
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire actionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	variant, err := decodeVariant(wire.Type, wire.Payload)
	if err != nil {
		return err
	}
	a.CreatedAt = wire.CreatedAt
	a.Variant = variant
	return nil
}

// MarshalJSON re-derives the wire type tag from the Variant itself, so tag
// and payload can never drift apart.
func (a Action) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(a.Variant)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionWire{CreatedAt: a.CreatedAt, Type: a.Variant.ActionType(), Payload: payload})
}

// decodeVariant is the one exhaustive switch over the closed Type set.
// Every case decodes into a distinct Variant implementation; anything else
// is rejected before an Action ever exists.
func decodeVariant(typ Type, payload json.RawMessage) (Variant, error) {
	switch typ {
	case TypePlanted:
		var v PlantedPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode item.planted payload: %w", err)
		}
		return v, nil
	case TypeHarvested:
		var v HarvestedPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode item.harvested payload: %w", err)
		}
		return v, nil
	case TypeChopped:
		var v ChoppedPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode tree.chopped payload: %w", err)
		}
		return v, nil
	case TypeCrafted:
		var v CraftedPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode item.crafted payload: %w", err)
		}
		return v, nil
	case TypeSold:
		var v SoldPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode item.sell payload: %w", err)
		}
		return v, nil
	case TypeRedeemed:
		var v RedeemedPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode item.redeemed payload: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, typ)
	}
}

// CreatedAtTimes projects a batch down to its timestamps, the shape the
// temporal gate validates.
func CreatedAtTimes(actions []Action) []time.Time {
	times := make([]time.Time, len(actions))
	for i, a := range actions {
		times[i] = a.CreatedAt
	}
	return times
}
