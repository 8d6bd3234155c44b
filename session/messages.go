package session

import "treasurehunt/game"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	PlayerID string
	Code     string
}

// Anchor: the player confirmed the world anchor
type Anchor struct {
	PlayerID string
}

// Tracking: tracking gained or lost
type Tracking struct {
	PlayerID string
	Active   bool
}

type Tap struct {
	PlayerID string
}

// Pose: one render-loop frame from the AR client
type Pose struct {
	PlayerID  string
	Player    game.Vec3
	Positions map[int]game.Vec3
}

// Restart: discard the game and start a fresh one
type Restart struct {
	PlayerID string
}

// Leave: issued on disconnect
type Leave struct {
	PlayerID string
}
