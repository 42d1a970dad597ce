package memory

import (
	"context"

	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"
)

type ZoneLayoutRepo struct {
	store *Store
}

func NewZoneLayoutRepo(store *Store) ZoneLayoutRepo {
	return ZoneLayoutRepo{store: store}
}

func (r ZoneLayoutRepo) Load(ctx context.Context) (world.Layout, error) {
	if !r.store.inTx(ctx) {
		r.store.mu.RLock()
		defer r.store.mu.RUnlock()
	}
	if r.store.layout == nil {
		return world.Layout{}, ports.ErrNotFound
	}
	return copyLayout(*r.store.layout), nil
}

func (r ZoneLayoutRepo) Replace(ctx context.Context, layout world.Layout) error {
	if !r.store.inTx(ctx) {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	cp := copyLayout(layout)
	r.store.layout = &cp
	return nil
}
