package game

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

type Variant uint8

const (
	Coin Variant = iota
	Ruby
	Emerald
	Diamond
	Crown

	variantCount = 5
)

var variantNames = [variantCount]string{"coin", "ruby", "emerald", "diamond", "crown"}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// VariantFor maps a spawn index onto the fixed cosmetic table.
func VariantFor(index int) Variant {
	return Variant(index % variantCount)
}

type Treasure struct {
	Index     int
	Variant   Variant
	Position  Vec3 // anchor-relative spawn position
	Collected bool
}

// Rand is the randomness source for placement. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Spawn places the treasure for the given spawn index. Distance is drawn
// before angle.
func Spawn(index int, rng Rand, t Tuning) Treasure {
	distance := t.PlacementMinDistance + rng.Float64()*t.PlacementDistanceSpan
	angle := rng.Float64() * math.Pi * 2
	return Treasure{
		Index:   index,
		Variant: VariantFor(index),
		Position: Vec3{
			X: math.Cos(angle) * distance,
			Y: t.TreasureHeight,
			Z: math.Sin(angle) * distance,
		},
	}
}
