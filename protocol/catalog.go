package protocol

type Direction string

const (
	ClientToServer Direction = "client"
	ServerToClient Direction = "server"
)

// Message pairs an envelope type with a zero value of its payload.
type Message struct {
	Type      string
	Direction Direction
	Payload   any
}

// Catalog lists every envelope type on the wire.
func Catalog() []Message {
	return []Message{
		{MsgHello, ClientToServer, Hello{}},
		{MsgAnchor, ClientToServer, Anchor{}},
		{MsgTracking, ClientToServer, Tracking{}},
		{MsgTap, ClientToServer, Tap{}},
		{MsgPose, ClientToServer, Pose{}},
		{MsgRestart, ClientToServer, Restart{}},

		{MsgWelcome, ServerToClient, Welcome{}},
		{MsgSpawned, ServerToClient, Spawned{}},
		{MsgPhase, ServerToClient, Phase{}},
		{MsgCollected, ServerToClient, Collected{}},
		{MsgComplete, ServerToClient, Complete{}},
		{MsgDespawned, ServerToClient, Despawned{}},
		{MsgState, ServerToClient, State{}},
		{MsgError, ServerToClient, Error{}},
	}
}
