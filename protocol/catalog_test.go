package protocol

import "testing"

func TestCatalogCoversEveryMessage(t *testing.T) {
	seen := make(map[string]Direction)
	for _, m := range Catalog() {
		if _, dup := seen[m.Type]; dup {
			t.Fatalf("duplicate catalog entry %q", m.Type)
		}
		if m.Payload == nil {
			t.Fatalf("%q has no payload", m.Type)
		}
		seen[m.Type] = m.Direction
	}

	client := []string{MsgHello, MsgAnchor, MsgTracking, MsgTap, MsgPose, MsgRestart}
	server := []string{MsgWelcome, MsgSpawned, MsgPhase, MsgCollected, MsgComplete, MsgDespawned, MsgState, MsgError}
	for _, typ := range client {
		if seen[typ] != ClientToServer {
			t.Fatalf("%q direction = %q", typ, seen[typ])
		}
	}
	for _, typ := range server {
		if seen[typ] != ServerToClient {
			t.Fatalf("%q direction = %q", typ, seen[typ])
		}
	}
	if len(seen) != len(client)+len(server) {
		t.Fatalf("catalog has %d entries, want %d", len(seen), len(client)+len(server))
	}
}

func TestEveryPayloadEncodes(t *testing.T) {
	for _, m := range Catalog() {
		b, err := Encode(m.Type, m.Payload)
		if err != nil {
			t.Fatalf("Encode(%q): %v", m.Type, err)
		}
		env, err := DecodeEnvelope(b)
		if err != nil || env.T != m.Type || len(env.P) == 0 {
			t.Fatalf("DecodeEnvelope(%q) = %+v, %v", m.Type, env, err)
		}
	}
}
