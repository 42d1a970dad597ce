package gormrepo

import (
	"context"
	"errors"
	"math"
	"testing"

	"gallerywalk/internal/domain/world"
)

func TestZoneLayoutRepo_ReplaceRejectsCellsOutsideInt32(t *testing.T) {
	// No database is needed: the layout is rejected before any write.
	repo := NewZoneLayoutRepo(nil)
	base := world.Layout{Pool: []string{"hall-a"}}

	cases := []world.Layout{
		{OffLimits: []world.ChunkCoord{{X: math.MaxInt32 + 1, Y: 0}}, Pool: base.Pool},
		{OffLimits: []world.ChunkCoord{{X: 0, Y: math.MinInt32 - 1}}, Pool: base.Pool},
		{Special: []world.ChunkCoord{{X: -10, Y: math.MaxInt32 + 1}}, SpecialTemplate: "atrium", Pool: base.Pool},
	}
	for _, l := range cases {
		if err := repo.Replace(context.Background(), l); !errors.Is(err, world.ErrInvalidConfig) {
			t.Fatalf("Replace(%+v) expected ErrInvalidConfig, got %v", l, err)
		}
	}
}

func TestCheckStorable_AcceptsInt32Bounds(t *testing.T) {
	l := world.Layout{
		OffLimits: []world.ChunkCoord{{X: math.MaxInt32, Y: math.MinInt32}},
		Pool:      []string{"hall-a"},
	}
	if err := checkStorable(l); err != nil {
		t.Fatalf("checkStorable error: %v", err)
	}
}
