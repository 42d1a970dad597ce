package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxIndex bounds cell indices on both axes. Beyond it float64 positions no
// longer resolve single cells and neighbour arithmetic nears int overflow.
const MaxIndex = 1 << 50

var ErrOutOfRange = errors.New("position outside streamable range")

// CheckPosition returns ErrOutOfRange when pos does not map to a cell
// within MaxIndex on either planar axis.
func CheckPosition(pos mgl64.Vec3, size float64) error {
	for _, v := range [2]float64{pos.X() / size, pos.Z() / size} {
		if math.IsNaN(v) || math.Abs(v) > MaxIndex {
			return fmt.Errorf("%w: %v at chunk size %v", ErrOutOfRange, pos, size)
		}
	}
	return nil
}

// CoordOf maps a world position to the cell containing it. The planar axes
// are X and Z; height is ignored. Halfway positions round to the even cell
// so a boundary position always resolves to the same coordinate. Indices
// clamp to MaxIndex; use CheckPosition to reject such positions instead.
func CoordOf(pos mgl64.Vec3, size float64) ChunkCoord {
	return ChunkCoord{
		X: roundIndex(pos.X() / size),
		Y: roundIndex(pos.Z() / size),
	}
}

// AnchorOf is the world position of a cell's anchor at ground height.
func AnchorOf(c ChunkCoord, size float64) mgl64.Vec3 {
	return mgl64.Vec3{float64(c.X) * size, 0, float64(c.Y) * size}
}

// NeighborsOf returns the four orthogonal neighbours in north, south, east,
// west order.
func NeighborsOf(c ChunkCoord) [4]ChunkCoord {
	return [4]ChunkCoord{
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
	}
}

func roundIndex(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > MaxIndex:
		return MaxIndex
	case v < -MaxIndex:
		return -MaxIndex
	}
	return int(math.RoundToEven(v))
}
