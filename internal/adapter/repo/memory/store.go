package memory

import (
	"sync"

	"gallerywalk/internal/domain/world"
)

type Store struct {
	mu     sync.RWMutex
	layout *world.Layout
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SeedLayout(l world.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyLayout(l)
	s.layout = &cp
}

func copyLayout(l world.Layout) world.Layout {
	return world.Layout{
		OffLimits:       append([]world.ChunkCoord(nil), l.OffLimits...),
		Special:         append([]world.ChunkCoord(nil), l.Special...),
		SpecialTemplate: l.SpecialTemplate,
		Pool:            append([]string(nil), l.Pool...),
	}
}
