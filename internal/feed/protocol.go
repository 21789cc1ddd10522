// Package feed streams chunk lifecycle events over websocket to observers
// (debug viewers, external meshers) and accepts observer position updates
// from them.
package feed

// Version is the wire protocol version. Clients announcing a different
// version are rejected at subscribe time.
const Version = 1

// SubscribeMsg is the first message a client must send after connecting.
type SubscribeMsg struct {
	Type            string `json:"type"` // "SUBSCRIBE"
	ProtocolVersion int    `json:"protocol_version"`
}

// ObserverMsg moves the observer. Subsequent streaming ticks recompute each
// tier's alive set around the new position.
type ObserverMsg struct {
	Type string  `json:"type"` // "OBSERVER"
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// HelloMsg is sent once after a successful subscribe.
type HelloMsg struct {
	Type            string   `json:"type"` // "HELLO"
	ProtocolVersion int      `json:"protocol_version"`
	ChunkEdge       int      `json:"chunk_edge"`
	Tiers           []string `json:"tiers"`
}

// ChunkEventMsg announces a chunk entering or leaving a tier's alive set.
type ChunkEventMsg struct {
	Type      string `json:"type"`  // "CHUNK_EVENT"
	Event     string `json:"event"` // "spawned" or "despawned"
	Seq       uint64 `json:"seq"`
	Tier      string `json:"tier"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Z         int    `json:"z"`
	DebugDraw bool   `json:"debug_draw"`
	Solid     int    `json:"solid,omitempty"`
}

// StatsMsg is a periodic summary of generated chunk counts per tier.
type StatsMsg struct {
	Type     string         `json:"type"` // "STATS"
	Seq      uint64         `json:"seq"`
	Observer [3]float64     `json:"observer"`
	Chunks   map[string]int `json:"chunks"`
}

const (
	msgSubscribe  = "SUBSCRIBE"
	msgObserver   = "OBSERVER"
	msgHello      = "HELLO"
	msgChunkEvent = "CHUNK_EVENT"
	msgStats      = "STATS"

	eventSpawned   = "spawned"
	eventDespawned = "despawned"
)
