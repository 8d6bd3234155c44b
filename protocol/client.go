package protocol

//input structs coming in from the client.

type Hello struct {
	V    int    `json:"v"`              // version
	Name string `json:"name,omitempty"` // optional name
}

// Anchor is sent once the player confirms the world anchor.
type Anchor struct{}

type Tracking struct {
	Active bool `json:"active"`
}

type Tap struct{}

// Pose is one render-loop frame: the camera world position plus the
// current world position of each placed treasure.
type Pose struct {
	Player    Vec3           `json:"player"`
	Treasures []TreasurePose `json:"treasures,omitempty"`
}

type TreasurePose struct {
	Index    int  `json:"index"`
	Position Vec3 `json:"position"`
}

type Restart struct{}
