package protocol

import (
	"encoding/json"
)

const V = 1

// client -> server
const (
	MsgHello    = "hello"
	MsgAnchor   = "anchor"
	MsgTracking = "tracking"
	MsgTap      = "tap"
	MsgPose     = "pose"
	MsgRestart  = "restart"
)

// server -> client
const (
	MsgWelcome   = "welcome"
	MsgSpawned   = "spawned"
	MsgPhase     = "phase"
	MsgCollected = "collected"
	MsgComplete  = "complete"
	MsgDespawned = "despawned"
	MsgState     = "state"
	MsgError     = "error"
)

const (
	SimTickHz    = 20
	BroadcastHz  = 5
	ClientPoseHz = 30 // expected render-loop cadence, informational
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
