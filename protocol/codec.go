package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"treasurehunt/game"
)

var (
	ErrEmptyEnvelope = errors.New("empty envelope")
	ErrEmptyPayload  = errors.New("empty payload")
)

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: envelope type is empty")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: %w", t, ErrEmptyPayload)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q payload: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("decode %q: %w", env.T, ErrEmptyPayload)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %q payload: %w", env.T, err)
	}
	return out, nil
}

func FromVec3(v game.Vec3) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vec3) Game() game.Vec3 {
	return game.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func SnapshotTreasure(t game.Treasure) TreasureSnapshot {
	return TreasureSnapshot{
		Index:     t.Index,
		Variant:   t.Variant.String(),
		Position:  FromVec3(t.Position),
		Collected: t.Collected,
	}
}

// Positions flattens a pose's treasure list into the lookup the game wants.
// Later entries for the same index win.
func (p Pose) Positions() map[int]game.Vec3 {
	if len(p.Treasures) == 0 {
		return nil
	}
	out := make(map[int]game.Vec3, len(p.Treasures))
	for _, tp := range p.Treasures {
		out[tp.Index] = tp.Position.Game()
	}
	return out
}

// BuildState snapshots every treasure still in the scene.
func BuildState(s *game.State) State {
	active := game.Active(s)
	out := State{
		Phase:             s.Phase.String(),
		Status:            game.StatusText(s),
		Score:             s.Score,
		TreasuresPlaced:   s.TreasuresPlaced,
		MaxTreasures:      game.MaxTreasures,
		AnchorEstablished: s.AnchorEstablished,
		TrackingActive:    s.TrackingActive,
		Treasures:         make([]TreasureSnapshot, 0, len(active)),
	}
	for _, t := range active {
		out.Treasures = append(out.Treasures, SnapshotTreasure(t))
	}
	return out
}
