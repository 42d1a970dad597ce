package httpadapter

import (
	"context"
	"encoding/json"
	"testing"

	observermem "gallerywalk/internal/adapter/observer/memory"
	"gallerywalk/internal/adapter/world/runtime"
	"gallerywalk/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
	"github.com/go-gl/mathgl/mgl64"
)

type fakeStream struct {
	snap runtime.Snapshot
}

func (f fakeStream) Snapshot() runtime.Snapshot { return f.snap }

func (f fakeStream) Chunk(c world.ChunkCoord) (world.ResidentChunk, bool) {
	for _, rc := range f.snap.Chunks {
		if rc.Coord == c {
			return rc, true
		}
	}
	return world.ResidentChunk{}, false
}

type fakeLayout struct{ layout world.Layout }

func (f fakeLayout) Layout() world.Layout { return f.layout }

func testHandler() Handler {
	north := world.ResidentChunk{
		Coord:   world.ChunkCoord{X: 0, Y: 1},
		Variant: world.Variant{Kind: world.VariantStandard, Template: "hall-b", PoolIndex: 1},
		Anchor:  mgl64.Vec3{0, 0, 22},
		Facing:  world.FacingEast,
		Handle:  "h-1",
		Tick:    1,
	}
	return Handler{
		Stream: fakeStream{snap: runtime.Snapshot{
			Tick:      3,
			Observer:  mgl64.Vec3{1, 0, 2},
			Resident:  1,
			LastSpawn: &north,
			Chunks:    []world.ResidentChunk{north},
		}},
		Observer:  observermem.NewObserver(mgl64.Vec3{}),
		Zones:     fakeLayout{layout: world.Layout{Pool: []string{"hall-a"}}},
		ChunkSize: 22,
	}
}

func decodeBody(t *testing.T, ctx *app.RequestContext, out any) {
	t.Helper()
	if err := json.Unmarshal(ctx.Response.Body(), out); err != nil {
		t.Fatalf("unmarshal response: %v (body=%s)", err, ctx.Response.Body())
	}
}

func TestStatus_ReportsSnapshot(t *testing.T) {
	ctx := &app.RequestContext{}
	testHandler().status(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]any
	decodeBody(t, ctx, &body)
	if body["tick"].(float64) != 3 || body["resident"].(float64) != 1 || body["chunk_size"].(float64) != 22 {
		t.Fatalf("unexpected status body: %v", body)
	}
	last := body["last_spawn"].(map[string]any)
	if last["template"] != "hall-b" || last["facing"] != "east" || last["yaw_deg"].(float64) != 90 {
		t.Fatalf("unexpected last spawn: %v", last)
	}
}

func TestChunks_ListsResident(t *testing.T) {
	ctx := &app.RequestContext{}
	testHandler().chunks(context.Background(), ctx)

	var body struct {
		Count  int             `json:"count"`
		Chunks []chunkResponse `json:"chunks"`
	}
	decodeBody(t, ctx, &body)
	if body.Count != 1 || len(body.Chunks) != 1 || body.Chunks[0].Coord != (world.ChunkCoord{X: 0, Y: 1}) {
		t.Fatalf("unexpected chunks body: %+v", body)
	}
	if body.Chunks[0].Anchor != (vec3JSON{X: 0, Y: 0, Z: 22}) {
		t.Fatalf("unexpected anchor: %+v", body.Chunks[0].Anchor)
	}
}

func TestChunk_FoundMissingAndInvalid(t *testing.T) {
	h := testHandler()

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "x", Value: "0"}, {Key: "y", Value: "1"}}
	h.chunk(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "x", Value: "5"}, {Key: "y", Value: "5"}}
	h.chunk(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "x", Value: "east"}, {Key: "y", Value: "1"}}
	h.chunk(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
	var body map[string]map[string]any
	decodeBody(t, ctx, &body)
	if got, want := body["error"]["code"], "invalid_coord"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestMove_AbsoluteAndDelta(t *testing.T) {
	h := testHandler()

	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"to":{"x":44,"y":0,"z":-10}}`))
	h.move(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", got, ctx.Response.Body())
	}
	if got := h.Observer.Position(); got != (mgl64.Vec3{44, 0, -10}) {
		t.Fatalf("observer not moved: %v", got)
	}

	ctx = &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"delta":{"x":-44,"y":0,"z":-12}}`))
	h.move(context.Background(), ctx)
	var body struct {
		Current world.ChunkCoord `json:"current"`
	}
	decodeBody(t, ctx, &body)
	if body.Current != (world.ChunkCoord{X: 0, Y: -1}) {
		t.Fatalf("unexpected current cell: %+v", body.Current)
	}
}

func TestMove_RejectsEmptyAndBadJSON(t *testing.T) {
	h := testHandler()

	ctx := &app.RequestContext{}
	h.move(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"to":`))
	h.move(context.Background(), ctx)
	var body map[string]map[string]any
	decodeBody(t, ctx, &body)
	if got, want := body["error"]["code"], "invalid_json"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestZonesAndKPI_NotConfigured(t *testing.T) {
	h := Handler{}
	ctx := &app.RequestContext{}
	h.kpi(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 for kpi, got %d", got)
	}
	ctx = &app.RequestContext{}
	h.zones(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 for zones, got %d", got)
	}
}

func TestMove_RejectsPositionsOutsideStreamableRange(t *testing.T) {
	h := testHandler()
	start := mgl64.Vec3{44, 0, -10}
	h.Observer.MoveTo(start)

	for _, raw := range []string{
		`{"to":{"x":1e300,"y":0,"z":0}}`,
		`{"to":{"x":0,"y":0,"z":-1e300}}`,
		`{"delta":{"x":1.7e308,"y":0,"z":0}}`,
	} {
		ctx := &app.RequestContext{}
		ctx.Request.SetBody([]byte(raw))
		h.move(context.Background(), ctx)
		if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", raw, got, ctx.Response.Body())
		}
		var body map[string]map[string]any
		decodeBody(t, ctx, &body)
		if got, want := body["error"]["code"], "invalid_position"; got != want {
			t.Fatalf("%s: error code mismatch: got=%q want=%q", raw, got, want)
		}
		if got := h.Observer.Position(); got != start {
			t.Fatalf("%s: observer moved to %v", raw, got)
		}
	}
}
