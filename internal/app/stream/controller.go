package stream

import (
	"errors"
	"fmt"
	"math"

	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrMissingDependency = errors.New("stream controller dependency missing")

// Rand is the random source used for template and facing picks.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Config struct {
	ChunkSize float64
}

type Deps struct {
	Registry     *world.Registry
	Policy       world.ZonePolicy
	Materializer ports.Materializer
	Metrics      ports.StreamMetrics
	Rand         Rand
}

type StepResult struct {
	Tick    uint64               `json:"tick"`
	Current world.ChunkCoord     `json:"current"`
	Spawned *world.ResidentChunk `json:"spawned,omitempty"`
	// Deferred counts eligible neighbours left for a later tick.
	Deferred int `json:"deferred"`
}

// Controller fills the cells around the observer, at most one per Step.
// It owns its registry and must be driven from a single goroutine.
type Controller struct {
	size     float64
	registry *world.Registry
	policy   world.ZonePolicy
	mat      ports.Materializer
	metrics  ports.StreamMetrics
	rng      Rand
	tick     uint64
}

func NewController(cfg Config, deps Deps) (*Controller, error) {
	if cfg.ChunkSize <= 0 || math.IsNaN(cfg.ChunkSize) || math.IsInf(cfg.ChunkSize, 0) {
		return nil, fmt.Errorf("%w: chunk size must be positive and finite, got %v", world.ErrInvalidConfig, cfg.ChunkSize)
	}
	if deps.Policy.PoolSize() == 0 {
		return nil, fmt.Errorf("%w: zone policy has no standard pool", world.ErrInvalidConfig)
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	}
	if deps.Materializer == nil {
		return nil, fmt.Errorf("%w: materializer", ErrMissingDependency)
	}
	if deps.Rand == nil {
		return nil, fmt.Errorf("%w: rand", ErrMissingDependency)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Controller{
		size:     cfg.ChunkSize,
		registry: deps.Registry,
		policy:   deps.Policy,
		mat:      deps.Materializer,
		metrics:  metrics,
		rng:      deps.Rand,
	}, nil
}

// Step runs one tick for the observer at pos. The observer's own cell is
// not considered; only its four neighbours are. A position outside the
// streamable range fails with world.ErrOutOfRange and does not advance the
// tick.
func (c *Controller) Step(pos mgl64.Vec3) (StepResult, error) {
	if err := world.CheckPosition(pos, c.size); err != nil {
		return StepResult{Tick: c.tick}, err
	}
	c.tick++
	current := world.CoordOf(pos, c.size)
	res := StepResult{Tick: c.tick, Current: current}

	spawned := false
	for _, n := range world.NeighborsOf(current) {
		if c.policy.Classify(n) == world.ClassOffLimits {
			c.metrics.RecordOffLimitsSkip()
			continue
		}
		if _, ok := c.registry.Get(n); ok {
			continue
		}
		if spawned {
			res.Deferred++
			continue
		}
		rc, err := c.spawn(n)
		if err != nil {
			return res, err
		}
		res.Spawned = &rc
		spawned = true
	}
	if res.Deferred > 0 {
		c.metrics.RecordDeferred(res.Deferred)
	}
	return res, nil
}

// Seed makes coord resident outside the tick throttle, for callers that
// want the starting cell filled. It reports false when coord is off-limits
// or already resident.
func (c *Controller) Seed(coord world.ChunkCoord) (world.ResidentChunk, bool, error) {
	if c.policy.Classify(coord) == world.ClassOffLimits {
		return world.ResidentChunk{}, false, nil
	}
	if existing, ok := c.registry.Get(coord); ok {
		return existing, false, nil
	}
	rc, err := c.spawn(coord)
	if err != nil {
		return world.ResidentChunk{}, false, err
	}
	return rc, true, nil
}

func (c *Controller) Tick() uint64 {
	return c.tick
}

func (c *Controller) ChunkSize() float64 {
	return c.size
}

func (c *Controller) Registry() *world.Registry {
	return c.registry
}

func (c *Controller) spawn(coord world.ChunkCoord) (world.ResidentChunk, error) {
	variant := c.pickVariant(coord)
	facing := world.Facing(c.rng.Intn(world.FacingCount))
	anchor := world.AnchorOf(coord, c.size)

	handle, err := c.mat.Materialize(ports.MaterializeRequest{
		Coord:    coord,
		Template: variant.Template,
		Anchor:   anchor,
		Facing:   facing,
	})
	if err != nil {
		c.metrics.RecordFailure()
		return world.ResidentChunk{}, fmt.Errorf("%w %s: %w", ports.ErrMaterialize, coord, err)
	}

	rc := world.ResidentChunk{
		Coord:   coord,
		Variant: variant,
		Anchor:  anchor,
		Facing:  facing,
		Handle:  handle,
		Tick:    c.tick,
	}
	c.registry.Set(coord, rc)
	c.metrics.RecordSpawn(variant.Kind)
	return rc, nil
}

func (c *Controller) pickVariant(coord world.ChunkCoord) world.Variant {
	if c.policy.Classify(coord) == world.ClassSpecial {
		return c.policy.SpecialVariant()
	}
	return c.policy.StandardVariant(c.rng.Intn(c.policy.PoolSize()))
}

type noopMetrics struct{}

func (noopMetrics) RecordSpawn(world.VariantKind) {}
func (noopMetrics) RecordDeferred(int) {}
func (noopMetrics) RecordOffLimitsSkip() {}
func (noopMetrics) RecordFailure() {}
