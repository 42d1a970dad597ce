package inmemory

import (
	"sync"

	"gallerywalk/internal/domain/world"
)

type Snapshot struct {
	SpawnTotal     uint64            `json:"spawn_total"`
	SpawnByVariant map[string]uint64 `json:"spawn_by_variant"`
	DeferredTotal  uint64            `json:"deferred_total"`
	OffLimitsSkips uint64            `json:"off_limits_skips"`
	Failures       uint64            `json:"failures"`
}

type Recorder struct {
	mu        sync.Mutex
	byVariant map[string]uint64
	deferred  uint64
	skips     uint64
	failures  uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byVariant: map[string]uint64{},
	}
}

func (r *Recorder) RecordSpawn(kind world.VariantKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byVariant[string(kind)]++
}

func (r *Recorder) RecordDeferred(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deferred += uint64(n)
}

func (r *Recorder) RecordOffLimitsSkip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skips++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		SpawnByVariant: make(map[string]uint64, len(r.byVariant)),
		DeferredTotal:  r.deferred,
		OffLimitsSkips: r.skips,
		Failures:       r.failures,
	}
	for k, v := range r.byVariant {
		out.SpawnByVariant[k] = v
		out.SpawnTotal += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
