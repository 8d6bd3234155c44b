package protocol

type Welcome struct {
	PlayerID      string  `json:"playerId"`
	Code          string  `json:"code"`
	MaxTreasures  int     `json:"maxTreasures"`
	CollectRadius float64 `json:"collectRadius"`
	TickHz        int     `json:"tickHz"`
}

type TreasureSnapshot struct {
	Index     int    `json:"index"`
	Variant   string `json:"variant"`
	Position  Vec3   `json:"position"`
	Collected bool   `json:"collected"`
}

type Spawned struct {
	Treasure TreasureSnapshot `json:"treasure"`
}

type Phase struct {
	Phase           string `json:"phase"`
	Status          string `json:"status"`
	TreasuresPlaced int    `json:"treasuresPlaced"`
	Score           int    `json:"score"`
}

type Collected struct {
	Treasure TreasureSnapshot `json:"treasure"`
	Score    int              `json:"score"`
	Status   string           `json:"status"`
}

type Complete struct {
	Score     int   `json:"score"`
	ElapsedMs int64 `json:"elapsedMs"`
}

type Despawned struct {
	Index int `json:"index"`
}

type State struct {
	Phase             string             `json:"phase"`
	Status            string             `json:"status"`
	Score             int                `json:"score"`
	TreasuresPlaced   int                `json:"treasuresPlaced"`
	MaxTreasures      int                `json:"maxTreasures"`
	AnchorEstablished bool               `json:"anchorEstablished"`
	TrackingActive    bool               `json:"trackingActive"`
	Treasures         []TreasureSnapshot `json:"treasures"`
}

type Error struct {
	Message string `json:"message"`
}
