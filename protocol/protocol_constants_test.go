package protocol

import (
	"errors"
	"testing"

	"treasurehunt/game"
)

func TestMessageConstants(t *testing.T) {
	cases := map[string]string{
		MsgHello:     "hello",
		MsgAnchor:    "anchor",
		MsgTracking:  "tracking",
		MsgTap:       "tap",
		MsgPose:      "pose",
		MsgRestart:   "restart",
		MsgWelcome:   "welcome",
		MsgSpawned:   "spawned",
		MsgPhase:     "phase",
		MsgCollected: "collected",
		MsgComplete:  "complete",
		MsgDespawned: "despawned",
		MsgState:     "state",
		MsgError:     "error",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("message constant = %q, want %q", got, want)
		}
	}
}

func TestTimingSanity(t *testing.T) {
	if SimTickHz <= 0 || BroadcastHz <= 0 || ClientPoseHz <= 0 {
		t.Fatalf("timing constants must be > 0")
	}
	if SimTickHz%BroadcastHz != 0 {
		t.Fatalf("SimTickHz %% BroadcastHz != 0 (%d %% %d)", SimTickHz, BroadcastHz)
	}
}

func TestEncodeDecodePose(t *testing.T) {
	in := Pose{
		Player: Vec3{X: 1, Y: 1.5, Z: -2},
		Treasures: []TreasurePose{
			{Index: 0, Position: Vec3{X: 0.5}},
			{Index: 3, Position: Vec3{Z: 2}},
		},
	}
	b, err := Encode(MsgPose, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgPose {
		t.Fatalf("type = %q, want %q", env.T, MsgPose)
	}
	out, err := DecodePayload[Pose](env)
	if err != nil {
		t.Fatalf("decode pose: %v", err)
	}
	pos := out.Positions()
	if len(pos) != 2 || pos[3] != (game.Vec3{Z: 2}) {
		t.Fatalf("positions = %+v", pos)
	}
	if out.Player.Game() != (game.Vec3{X: 1, Y: 1.5, Z: -2}) {
		t.Fatalf("player = %+v", out.Player)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeEnvelope(nil); !errors.Is(err, ErrEmptyEnvelope) {
		t.Fatalf("empty envelope err = %v", err)
	}
	if _, err := DecodeEnvelope([]byte(`{"p":{}}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for bad json")
	}
	if _, err := DecodePayload[Hello](Envelope{T: MsgHello}); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("empty payload err = %v", err)
	}
	if _, err := Encode(MsgTap, nil); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("nil payload err = %v", err)
	}
	if _, err := Encode("", Tap{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestBuildStateSkipsReleased(t *testing.T) {
	s := game.NewState(game.DefaultTuning())
	game.EstablishAnchor(s)
	s.Treasures = []*game.Treasure{
		{Index: 0, Variant: game.Coin, Collected: true},
		{Index: 1, Variant: game.Ruby},
	}
	s.TreasuresPlaced = 2
	s.Score = 1
	s.Released[0] = true

	st := BuildState(s)
	if len(st.Treasures) != 1 || st.Treasures[0].Variant != "ruby" {
		t.Fatalf("treasures = %+v", st.Treasures)
	}
	if st.Phase != "placing" || st.Status != "Placement: 2/5" {
		t.Fatalf("phase/status = %q/%q", st.Phase, st.Status)
	}
	if !st.AnchorEstablished || !st.TrackingActive {
		t.Fatalf("gate flags not carried: %+v", st)
	}
}
