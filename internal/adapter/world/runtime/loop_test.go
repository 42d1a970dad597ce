package runtime

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	observermem "gallerywalk/internal/adapter/observer/memory"
	"gallerywalk/internal/adapter/world/mock"
	"gallerywalk/internal/app/stream"
	"gallerywalk/internal/domain/world"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestLoop(t *testing.T, mat *mock.Materializer, obs *observermem.Observer) *Loop {
	t.Helper()
	policy, err := world.NewZonePolicy(world.Layout{
		OffLimits: []world.ChunkCoord{{X: 0, Y: 0}},
		Pool:      []string{"hall-a", "hall-b"},
	})
	if err != nil {
		t.Fatalf("NewZonePolicy error: %v", err)
	}
	ctrl, err := stream.NewController(stream.Config{ChunkSize: 22}, stream.Deps{
		Registry:     world.NewRegistry(),
		Policy:       policy,
		Materializer: mat,
		Rand:         rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewController error: %v", err)
	}
	return NewLoop(Config{Interval: time.Millisecond}, ctrl, obs, quietLogger())
}

func TestLoop_StepOncePublishesSnapshot(t *testing.T) {
	mat := &mock.Materializer{}
	obs := observermem.NewObserver(mgl64.Vec3{})
	l := newTestLoop(t, mat, obs)

	res, err := l.StepOnce()
	if err != nil {
		t.Fatalf("step error: %v", err)
	}
	snap := l.Snapshot()
	if snap.Tick != 1 || snap.Resident != 1 || snap.LastSpawn == nil {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastSpawn.Coord != res.Spawned.Coord {
		t.Fatalf("snapshot last spawn %v != step spawn %v", snap.LastSpawn.Coord, res.Spawned.Coord)
	}
	if _, ok := l.Chunk(world.ChunkCoord{X: 0, Y: 1}); !ok {
		t.Fatalf("expected (0,1) to be visible through the snapshot")
	}
	if l.Ticks() != 1 {
		t.Fatalf("expected 1 tick, got %d", l.Ticks())
	}

	snap.Chunks[0].Handle = "mutated"
	if rc, _ := l.Chunk(world.ChunkCoord{X: 0, Y: 1}); rc.Handle == "mutated" {
		t.Fatalf("snapshot shares storage with the loop")
	}
}

func TestLoop_RunFillsNeighboursAndStopsOnCancel(t *testing.T) {
	mat := &mock.Materializer{}
	l := newTestLoop(t, mat, observermem.NewObserver(mgl64.Vec3{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for l.Snapshot().Resident < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for neighbours, resident=%d", l.Snapshot().Resident)
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if l.Running() {
		t.Fatalf("loop should report stopped")
	}
	if got := len(mat.Calls()); got != 4 {
		t.Fatalf("expected 4 materialize calls, got %d", got)
	}
}

func TestLoop_RunStopsOnStepFailure(t *testing.T) {
	wantErr := errors.New("engine down")
	l := newTestLoop(t, &mock.Materializer{Err: wantErr}, observermem.NewObserver(mgl64.Vec3{}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Run(ctx); !errors.Is(err, wantErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if l.Snapshot().Resident != 0 {
		t.Fatalf("failed step must not publish chunks")
	}
}

func TestLoop_RunSkipsOutOfRangeObserver(t *testing.T) {
	mat := &mock.Materializer{}
	obs := observermem.NewObserver(mgl64.Vec3{1e300, 0, 0})
	l := newTestLoop(t, mat, obs)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run should keep going past an out of range observer, got %v", err)
	}
	if l.Ticks() != 0 || len(mat.Calls()) != 0 {
		t.Fatalf("out of range observer ticked: ticks=%d calls=%d", l.Ticks(), len(mat.Calls()))
	}
	if snap := l.Snapshot(); snap.Resident != 0 {
		t.Fatalf("unexpected resident chunks: %+v", snap)
	}
}
