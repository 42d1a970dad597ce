package ports

import (
	"context"

	"gallerywalk/internal/domain/world"
)

type ZoneLayoutRepository interface {
	Load(ctx context.Context) (world.Layout, error)
	Replace(ctx context.Context, layout world.Layout) error
}
