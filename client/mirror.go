// Package client keeps a local copy of a hunt session built from the
// server's messages.
package client

import (
	"fmt"
	"math"
	"sort"

	"treasurehunt/protocol"
)

// Mirror is the client view of one session. It is not safe for
// concurrent use.
type Mirror struct {
	PlayerID      string
	Code          string
	MaxTreasures  int
	CollectRadius float64

	Phase             string
	Status            string
	Score             int
	TreasuresPlaced   int
	AnchorEstablished bool
	TrackingActive    bool

	// ElapsedMs is set once the hunt completes.
	ElapsedMs int64
	Completed bool
	LastError string

	treasures map[int]protocol.TreasureSnapshot
}

func NewMirror() *Mirror {
	return &Mirror{
		Phase:     "placing",
		treasures: make(map[int]protocol.TreasureSnapshot),
	}
}

// Apply folds one server envelope into the mirror.
func (m *Mirror) Apply(env protocol.Envelope) error {
	switch env.T {
	case protocol.MsgWelcome:
		w, err := protocol.DecodePayload[protocol.Welcome](env)
		if err != nil {
			return err
		}
		m.PlayerID = w.PlayerID
		m.Code = w.Code
		m.MaxTreasures = w.MaxTreasures
		m.CollectRadius = w.CollectRadius
	case protocol.MsgState:
		st, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			return err
		}
		m.applyState(st)
	case protocol.MsgSpawned:
		sp, err := protocol.DecodePayload[protocol.Spawned](env)
		if err != nil {
			return err
		}
		m.treasures[sp.Treasure.Index] = sp.Treasure
		if sp.Treasure.Index+1 > m.TreasuresPlaced {
			m.TreasuresPlaced = sp.Treasure.Index + 1
		}
	case protocol.MsgPhase:
		ph, err := protocol.DecodePayload[protocol.Phase](env)
		if err != nil {
			return err
		}
		if ph.Phase == "placing" && m.Phase != "placing" {
			m.reset()
		}
		m.Phase = ph.Phase
		m.Status = ph.Status
		m.TreasuresPlaced = ph.TreasuresPlaced
		m.Score = ph.Score
	case protocol.MsgCollected:
		c, err := protocol.DecodePayload[protocol.Collected](env)
		if err != nil {
			return err
		}
		m.treasures[c.Treasure.Index] = c.Treasure
		m.Score = c.Score
		m.Status = c.Status
	case protocol.MsgDespawned:
		d, err := protocol.DecodePayload[protocol.Despawned](env)
		if err != nil {
			return err
		}
		delete(m.treasures, d.Index)
	case protocol.MsgComplete:
		c, err := protocol.DecodePayload[protocol.Complete](env)
		if err != nil {
			return err
		}
		m.Score = c.Score
		m.ElapsedMs = c.ElapsedMs
		m.Completed = true
	case protocol.MsgError:
		e, err := protocol.DecodePayload[protocol.Error](env)
		if err != nil {
			return err
		}
		m.LastError = e.Message
	default:
		return fmt.Errorf("mirror: unexpected message %q", env.T)
	}
	return nil
}

func (m *Mirror) applyState(st protocol.State) {
	if st.Phase == "placing" && m.Phase != "placing" {
		m.reset()
	}
	m.Phase = st.Phase
	m.Status = st.Status
	m.Score = st.Score
	m.TreasuresPlaced = st.TreasuresPlaced
	m.MaxTreasures = st.MaxTreasures
	m.AnchorEstablished = st.AnchorEstablished
	m.TrackingActive = st.TrackingActive
	m.treasures = make(map[int]protocol.TreasureSnapshot, len(st.Treasures))
	for _, t := range st.Treasures {
		m.treasures[t.Index] = t
	}
}

func (m *Mirror) reset() {
	m.Completed = false
	m.ElapsedMs = 0
	m.Score = 0
	m.TreasuresPlaced = 0
	m.treasures = make(map[int]protocol.TreasureSnapshot)
}

// Treasures returns the treasures still in the scene, ordered by index.
func (m *Mirror) Treasures() []protocol.TreasureSnapshot {
	out := make([]protocol.TreasureSnapshot, 0, len(m.treasures))
	for _, t := range m.treasures {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Nearest returns the closest uncollected treasure to p and its distance.
func (m *Mirror) Nearest(p protocol.Vec3) (protocol.TreasureSnapshot, float64, bool) {
	var (
		best  protocol.TreasureSnapshot
		bestD = math.Inf(1)
		found bool
	)
	for _, t := range m.Treasures() {
		if t.Collected {
			continue
		}
		if d := distance(p, t.Position); d < bestD {
			best, bestD, found = t, d, true
		}
	}
	return best, bestD, found
}

func distance(a, b protocol.Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
