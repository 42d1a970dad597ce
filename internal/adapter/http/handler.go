package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gallerywalk/internal/adapter/world/runtime"
	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidCoord    = errors.New("invalid chunk coordinate")
	ErrInvalidPosition = errors.New("invalid observer position")
)

type streamView interface {
	Snapshot() runtime.Snapshot
	Chunk(c world.ChunkCoord) (world.ResidentChunk, bool)
}

type observerInput interface {
	Position() mgl64.Vec3
	MoveTo(pos mgl64.Vec3)
	MoveBy(delta mgl64.Vec3, check func(mgl64.Vec3) error) (mgl64.Vec3, error)
}

type layoutProvider interface {
	Layout() world.Layout
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Stream    streamView
	Observer  observerInput
	Zones     layoutProvider
	KPI       kpiSnapshotProvider
	ChunkSize float64
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/stream/status", h.status)
	api.GET("/stream/chunks", h.chunks)
	api.GET("/stream/chunks/:x/:y", h.chunk)
	api.GET("/zones", h.zones)
	api.GET("/observer", h.observer)
	api.POST("/observer/move", h.move)

	s.GET("/ops/kpi", h.kpi)
}

type vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVec3JSON(v mgl64.Vec3) vec3JSON {
	return vec3JSON{X: v.X(), Y: v.Y(), Z: v.Z()}
}

type chunkResponse struct {
	Coord     world.ChunkCoord  `json:"coord"`
	Variant   world.VariantKind `json:"variant"`
	Template  string            `json:"template"`
	PoolIndex int               `json:"pool_index"`
	Facing    string            `json:"facing"`
	YawDeg    float64           `json:"yaw_deg"`
	Anchor    vec3JSON          `json:"anchor"`
	Handle    world.Handle      `json:"handle"`
	Tick      uint64            `json:"tick"`
}

func toChunkResponse(rc world.ResidentChunk) chunkResponse {
	return chunkResponse{
		Coord:     rc.Coord,
		Variant:   rc.Variant.Kind,
		Template:  rc.Variant.Template,
		PoolIndex: rc.Variant.PoolIndex,
		Facing:    rc.Facing.String(),
		YawDeg:    rc.Facing.YawDegrees(),
		Anchor:    toVec3JSON(rc.Anchor),
		Handle:    rc.Handle,
		Tick:      rc.Tick,
	}
}

type statusResponse struct {
	Tick      uint64           `json:"tick"`
	ChunkSize float64          `json:"chunk_size"`
	Observer  vec3JSON         `json:"observer"`
	Current   world.ChunkCoord `json:"current"`
	Resident  int              `json:"resident"`
	LastSpawn *chunkResponse   `json:"last_spawn,omitempty"`
}

func (h Handler) status(_ context.Context, ctx *app.RequestContext) {
	snap := h.Stream.Snapshot()
	resp := statusResponse{
		Tick:      snap.Tick,
		ChunkSize: h.ChunkSize,
		Observer:  toVec3JSON(snap.Observer),
		Current:   snap.Current,
		Resident:  snap.Resident,
	}
	if snap.LastSpawn != nil {
		last := toChunkResponse(*snap.LastSpawn)
		resp.LastSpawn = &last
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) chunks(_ context.Context, ctx *app.RequestContext) {
	snap := h.Stream.Snapshot()
	out := make([]chunkResponse, 0, len(snap.Chunks))
	for _, rc := range snap.Chunks {
		out = append(out, toChunkResponse(rc))
	}
	ctx.JSON(consts.StatusOK, map[string]any{"chunks": out, "count": len(out)})
}

func (h Handler) chunk(_ context.Context, ctx *app.RequestContext) {
	x, errX := strconv.Atoi(ctx.Param("x"))
	y, errY := strconv.Atoi(ctx.Param("y"))
	if errX != nil || errY != nil {
		writeError(ctx, ErrInvalidCoord)
		return
	}
	rc, ok := h.Stream.Chunk(world.ChunkCoord{X: x, Y: y})
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, toChunkResponse(rc))
}

func (h Handler) zones(_ context.Context, ctx *app.RequestContext) {
	if h.Zones == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "zone layout not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Zones.Layout())
}

func (h Handler) observer(_ context.Context, ctx *app.RequestContext) {
	pos := h.Observer.Position()
	ctx.JSON(consts.StatusOK, map[string]any{
		"position": toVec3JSON(pos),
		"current":  world.CoordOf(pos, h.ChunkSize),
	})
}

// moveRequest sets the absolute position when To is present, otherwise
// shifts the observer by Delta.
type moveRequest struct {
	To    *vec3JSON `json:"to,omitempty"`
	Delta *vec3JSON `json:"delta,omitempty"`
}

func (h Handler) move(_ context.Context, ctx *app.RequestContext) {
	var body moveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	var pos mgl64.Vec3
	switch {
	case body.To != nil:
		to := mgl64.Vec3{body.To.X, body.To.Y, body.To.Z}
		if err := h.checkPosition(to); err != nil {
			writeError(ctx, err)
			return
		}
		h.Observer.MoveTo(to)
		pos = to
	case body.Delta != nil:
		delta := mgl64.Vec3{body.Delta.X, body.Delta.Y, body.Delta.Z}
		if !finite(delta) {
			writeError(ctx, ErrInvalidPosition)
			return
		}
		moved, err := h.Observer.MoveBy(delta, h.checkPosition)
		if err != nil {
			writeError(ctx, err)
			return
		}
		pos = moved
	default:
		writeError(ctx, ErrInvalidPosition)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"position": toVec3JSON(pos),
		"current":  world.CoordOf(pos, h.ChunkSize),
	})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// checkPosition accepts finite positions whose cell fits the streamable
// range for the configured chunk size.
func (h Handler) checkPosition(pos mgl64.Vec3) error {
	if !finite(pos) {
		return ErrInvalidPosition
	}
	if err := world.CheckPosition(pos, h.ChunkSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPosition, err)
	}
	return nil
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrInvalidCoord):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_coord", err.Error())
	case errors.Is(err, ErrInvalidPosition):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_position", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
