package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

type VariantKind string

const (
	VariantStandard VariantKind = "standard"
	VariantSpecial  VariantKind = "special"
)

// Variant names the template a chunk was built from. PoolIndex is -1 for
// the special template.
type Variant struct {
	Kind      VariantKind `json:"kind"`
	Template  string      `json:"template"`
	PoolIndex int         `json:"pool_index"`
}

// Facing is a quarter turn about the vertical axis.
type Facing int

const (
	FacingNorth Facing = iota
	FacingEast
	FacingSouth
	FacingWest
)

const FacingCount = 4

func (f Facing) Valid() bool {
	return f >= FacingNorth && f <= FacingWest
}

func (f Facing) YawDegrees() float64 {
	return 90 * float64(f)
}

func (f Facing) String() string {
	switch f {
	case FacingNorth:
		return "north"
	case FacingEast:
		return "east"
	case FacingSouth:
		return "south"
	case FacingWest:
		return "west"
	default:
		return fmt.Sprintf("facing(%d)", int(f))
	}
}

// Handle is the engine-side identity of a materialized chunk.
type Handle string

type ResidentChunk struct {
	Coord   ChunkCoord `json:"coord"`
	Variant Variant    `json:"variant"`
	Anchor  mgl64.Vec3 `json:"anchor"`
	Facing  Facing     `json:"facing"`
	Handle  Handle     `json:"handle"`
	Tick    uint64     `json:"tick"`
}
