package game

import "fmt"

// Internal truth authoritative game state

type Phase uint8

const (
	Placing Phase = iota
	Hunting
	Won
)

func (p Phase) String() string {
	switch p {
	case Placing:
		return "placing"
	case Hunting:
		return "hunting"
	case Won:
		return "won"
	}
	return "unknown"
}

type State struct {
	Phase             Phase
	Score             int
	TreasuresPlaced   int
	AnchorEstablished bool
	TrackingActive    bool
	Treasures         []*Treasure // spawn order, Treasures[i].Index == i
	Released          map[int]bool
	Tuning            Tuning
}

func NewState(t Tuning) *State {
	return &State{
		Phase:     Placing,
		Treasures: make([]*Treasure, 0, MaxTreasures),
		Released:  make(map[int]bool),
		Tuning:    t,
	}
}

type EventKind uint8

const (
	TreasureSpawned EventKind = iota + 1
	PhaseChanged
	TreasureCollected
	SessionComplete
)

func (k EventKind) String() string {
	switch k {
	case TreasureSpawned:
		return "treasure_spawned"
	case PhaseChanged:
		return "phase_changed"
	case TreasureCollected:
		return "treasure_collected"
	case SessionComplete:
		return "session_complete"
	}
	return "unknown"
}

// Event is what the state machine hands back to whoever renders it.
// Treasure is a copy taken at emit time.
type Event struct {
	Kind     EventKind
	Treasure Treasure
	Phase    Phase
	Score    int
}

// StatusText is the phase indicator line shown to the player.
func StatusText(s *State) string {
	switch s.Phase {
	case Placing:
		return fmt.Sprintf("Placement: %d/%d", s.TreasuresPlaced, MaxTreasures)
	case Hunting:
		return fmt.Sprintf("Hunt: %d/%d", s.Score, MaxTreasures)
	default:
		return fmt.Sprintf("Found all %d treasures!", MaxTreasures)
	}
}

// Active returns copies of the treasures still in the scene: spawned and
// not yet released after their collection animation.
func Active(s *State) []Treasure {
	out := make([]Treasure, 0, len(s.Treasures))
	for _, t := range s.Treasures {
		if t == nil || s.Released[t.Index] {
			continue
		}
		out = append(out, *t)
	}
	return out
}
