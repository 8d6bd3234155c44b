package client

import (
	"math"
	"testing"

	"treasurehunt/protocol"
)

func env(t *testing.T, typ string, payload any) protocol.Envelope {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	e, err := protocol.DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return e
}

func apply(t *testing.T, m *Mirror, typ string, payload any) {
	t.Helper()
	if err := m.Apply(env(t, typ, payload)); err != nil {
		t.Fatalf("apply %s: %v", typ, err)
	}
}

func snap(i int, x, z float64) protocol.TreasureSnapshot {
	return protocol.TreasureSnapshot{Index: i, Variant: "coin", Position: protocol.Vec3{X: x, Y: 0.3, Z: z}}
}

func TestMirrorFollowsHunt(t *testing.T) {
	m := NewMirror()
	apply(t, m, protocol.MsgWelcome, protocol.Welcome{PlayerID: "p1", Code: "ABCDEF", MaxTreasures: 5, CollectRadius: 0.8})
	if m.PlayerID != "p1" || m.Code != "ABCDEF" || m.CollectRadius != 0.8 {
		t.Fatalf("after welcome: %+v", m)
	}

	apply(t, m, protocol.MsgSpawned, protocol.Spawned{Treasure: snap(0, 1, 0)})
	apply(t, m, protocol.MsgSpawned, protocol.Spawned{Treasure: snap(1, 0, 2)})
	if m.TreasuresPlaced != 2 || len(m.Treasures()) != 2 {
		t.Fatalf("placed = %d, treasures = %d", m.TreasuresPlaced, len(m.Treasures()))
	}

	apply(t, m, protocol.MsgPhase, protocol.Phase{Phase: "hunting", Status: "Hunt: 0/5", TreasuresPlaced: 5})
	if m.Phase != "hunting" || m.Status != "Hunt: 0/5" {
		t.Fatalf("phase = %q status = %q", m.Phase, m.Status)
	}

	got := snap(0, 1, 0)
	got.Collected = true
	apply(t, m, protocol.MsgCollected, protocol.Collected{Treasure: got, Score: 1, Status: "Hunt: 1/5"})
	if m.Score != 1 || !m.Treasures()[0].Collected {
		t.Fatalf("after collect: score %d, %+v", m.Score, m.Treasures())
	}

	near, d, ok := m.Nearest(protocol.Vec3{Y: 0.3})
	if !ok || near.Index != 1 || math.Abs(d-2) > 1e-9 {
		t.Fatalf("Nearest = %+v %v %v", near, d, ok)
	}

	apply(t, m, protocol.MsgDespawned, protocol.Despawned{Index: 0})
	if ts := m.Treasures(); len(ts) != 1 || ts[0].Index != 1 {
		t.Fatalf("after despawn: %+v", ts)
	}

	apply(t, m, protocol.MsgComplete, protocol.Complete{Score: 5, ElapsedMs: 4200})
	if !m.Completed || m.ElapsedMs != 4200 || m.Score != 5 {
		t.Fatalf("after complete: %+v", m)
	}
}

func TestMirrorStateReplacesTreasures(t *testing.T) {
	m := NewMirror()
	apply(t, m, protocol.MsgSpawned, protocol.Spawned{Treasure: snap(0, 1, 0)})
	apply(t, m, protocol.MsgState, protocol.State{
		Phase:             "placing",
		Status:            "Placement: 2/5",
		TreasuresPlaced:   2,
		MaxTreasures:      5,
		AnchorEstablished: true,
		TrackingActive:    true,
		Treasures:         []protocol.TreasureSnapshot{snap(1, 0, 1), snap(0, 1, 0)},
	})
	ts := m.Treasures()
	if len(ts) != 2 || ts[0].Index != 0 || ts[1].Index != 1 {
		t.Fatalf("treasures = %+v", ts)
	}
	if !m.AnchorEstablished || !m.TrackingActive || m.Status != "Placement: 2/5" {
		t.Fatalf("state = %+v", m)
	}
}

func TestMirrorRestartClearsCompletion(t *testing.T) {
	m := NewMirror()
	apply(t, m, protocol.MsgPhase, protocol.Phase{Phase: "won", Score: 5, TreasuresPlaced: 5})
	apply(t, m, protocol.MsgComplete, protocol.Complete{Score: 5, ElapsedMs: 10})
	apply(t, m, protocol.MsgPhase, protocol.Phase{Phase: "placing", Status: "Placement: 0/5"})
	if m.Completed || m.Score != 0 || len(m.Treasures()) != 0 {
		t.Fatalf("after restart: %+v", m)
	}
}

func TestMirrorErrorsAndUnknown(t *testing.T) {
	m := NewMirror()
	apply(t, m, protocol.MsgError, protocol.Error{Message: "unsupported protocol version 2"})
	if m.LastError != "unsupported protocol version 2" {
		t.Fatalf("LastError = %q", m.LastError)
	}
	if err := m.Apply(protocol.Envelope{T: "bogus", P: []byte(`{}`)}); err == nil {
		t.Fatalf("unknown message accepted")
	}
	if err := m.Apply(protocol.Envelope{T: protocol.MsgSpawned, P: []byte(`{"treasure":`)}); err == nil {
		t.Fatalf("malformed payload accepted")
	}
}

func TestNearestEmpty(t *testing.T) {
	if _, _, ok := NewMirror().Nearest(protocol.Vec3{}); ok {
		t.Fatalf("Nearest on empty mirror reported a treasure")
	}
}
