package game

import (
	"fmt"
	"math"
	"time"
)

const (
	MaxTreasures = 5

	DefaultCollectRadius         = 0.8 // world units, matches the AR tracking scale
	DefaultPlacementMinDistance  = 1.0
	DefaultPlacementDistanceSpan = 2.0 // distance lands in [min, min+span)
	DefaultTreasureHeight        = 0.3

	CollectAnimation = 500 * time.Millisecond
)

// Tuning holds the scale-dependent constants. The defaults are calibrated
// for one world-tracking library; other trackers need their own values.
type Tuning struct {
	CollectRadius         float64
	PlacementMinDistance  float64
	PlacementDistanceSpan float64
	TreasureHeight        float64
}

func DefaultTuning() Tuning {
	return Tuning{
		CollectRadius:         DefaultCollectRadius,
		PlacementMinDistance:  DefaultPlacementMinDistance,
		PlacementDistanceSpan: DefaultPlacementDistanceSpan,
		TreasureHeight:        DefaultTreasureHeight,
	}
}

func (t Tuning) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"collect radius", t.CollectRadius},
		{"placement min distance", t.PlacementMinDistance},
		{"placement distance span", t.PlacementDistanceSpan},
		{"treasure height", t.TreasureHeight},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, f.v)
		}
	}
	if t.CollectRadius <= 0 {
		return fmt.Errorf("collect radius must be > 0, got %v", t.CollectRadius)
	}
	if t.PlacementMinDistance <= 0 {
		return fmt.Errorf("placement min distance must be > 0, got %v", t.PlacementMinDistance)
	}
	if t.PlacementDistanceSpan <= 0 {
		return fmt.Errorf("placement distance span must be > 0, got %v", t.PlacementDistanceSpan)
	}
	return nil
}
