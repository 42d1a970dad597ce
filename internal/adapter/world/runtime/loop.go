package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/app/stream"
	"gallerywalk/internal/domain/world"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var ErrAlreadyRunning = errors.New("stream loop already running")

type Config struct {
	Interval time.Duration
}

type Snapshot struct {
	Tick      uint64                `json:"tick"`
	Observer  mgl64.Vec3            `json:"observer"`
	Current   world.ChunkCoord      `json:"current"`
	Resident  int                   `json:"resident"`
	LastSpawn *world.ResidentChunk  `json:"last_spawn,omitempty"`
	Chunks    []world.ResidentChunk `json:"-"`
}

// Loop drives a controller at a fixed interval and publishes a snapshot
// after every tick. It is the only caller of the controller; readers go
// through Snapshot.
type Loop struct {
	ctrl     *stream.Controller
	observer ports.ObserverSource
	interval time.Duration
	log      *logrus.Logger

	running atomic.Bool
	ticks   atomic.Uint64

	mu    sync.RWMutex
	snap  Snapshot
	index map[world.ChunkCoord]int
}

func NewLoop(cfg Config, ctrl *stream.Controller, observer ports.ObserverSource, log *logrus.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 50 * time.Millisecond
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := &Loop{
		ctrl:     ctrl,
		observer: observer,
		interval: cfg.Interval,
		log:      log,
	}
	l.snap = Snapshot{Chunks: ctrl.Registry().List(), Resident: ctrl.Registry().Len()}
	l.index = make(map[world.ChunkCoord]int, len(l.snap.Chunks))
	for i, rc := range l.snap.Chunks {
		l.index[rc.Coord] = i
	}
	return l
}

// Run ticks until ctx is done or a step fails. A step failure is returned
// and ends the loop; an out-of-range observer only skips the tick.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.WithField("interval", l.interval).Info("stream loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.WithField("ticks", l.ticks.Load()).Info("stream loop stopped")
			return nil
		case <-ticker.C:
			if _, err := l.StepOnce(); err != nil {
				if errors.Is(err, world.ErrOutOfRange) {
					l.log.WithError(err).Warn("observer outside streamable range, tick skipped")
					continue
				}
				l.log.WithError(err).Error("stream step failed")
				return err
			}
		}
	}
}

// StepOnce runs a single tick. It must not be called while Run is active.
func (l *Loop) StepOnce() (stream.StepResult, error) {
	pos := l.observer.Position()
	res, err := l.ctrl.Step(pos)
	l.ticks.Store(res.Tick)
	if err != nil {
		return res, err
	}

	l.mu.Lock()
	l.snap.Tick = res.Tick
	l.snap.Observer = pos
	l.snap.Current = res.Current
	if res.Spawned != nil {
		spawned := *res.Spawned
		l.snap.LastSpawn = &spawned
		l.index[spawned.Coord] = len(l.snap.Chunks)
		l.snap.Chunks = append(l.snap.Chunks, spawned)
		l.snap.Resident = len(l.snap.Chunks)
	}
	l.mu.Unlock()

	if res.Spawned != nil {
		l.log.WithFields(logrus.Fields{
			"tick":     res.Tick,
			"coord":    res.Spawned.Coord.String(),
			"variant":  res.Spawned.Variant.Template,
			"facing":   res.Spawned.Facing.String(),
			"deferred": res.Deferred,
		}).Debug("chunk resident")
	}
	return res, nil
}

func (l *Loop) Running() bool {
	return l.running.Load()
}

func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Snapshot returns a copy safe to read from any goroutine.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := l.snap
	out.Chunks = append([]world.ResidentChunk(nil), l.snap.Chunks...)
	if l.snap.LastSpawn != nil {
		last := *l.snap.LastSpawn
		out.LastSpawn = &last
	}
	return out
}

// Chunk looks up a resident chunk in the published snapshot.
func (l *Loop) Chunk(c world.ChunkCoord) (world.ResidentChunk, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[c]
	if !ok {
		return world.ResidentChunk{}, false
	}
	return l.snap.Chunks[i], true
}
