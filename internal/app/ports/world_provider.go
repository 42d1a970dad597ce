package ports

import (
	"gallerywalk/internal/domain/world"

	"github.com/go-gl/mathgl/mgl64"
)

type ObserverSource interface {
	Position() mgl64.Vec3
}

type MaterializeRequest struct {
	Coord    world.ChunkCoord
	Template string
	Anchor   mgl64.Vec3
	Facing   world.Facing
}

// Materializer creates the engine-side object for a chunk. It is called
// synchronously from the tick and must not be retried by callers.
type Materializer interface {
	Materialize(req MaterializeRequest) (world.Handle, error)
}
