// Package catalog stands in for the engine that builds chunk geometry. It
// issues an opaque handle per materialized chunk and keeps a ledger of what
// was built from each template.
package catalog

import (
	"fmt"
	"sync"

	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Entry struct {
	Handle   world.Handle     `json:"handle"`
	Coord    world.ChunkCoord `json:"coord"`
	Template string           `json:"template"`
	YawDeg   float64          `json:"yaw_deg"`
}

type Materializer struct {
	log       *logrus.Logger
	templates map[string]struct{}

	mu         sync.RWMutex
	entries    map[world.Handle]Entry
	byTemplate map[string]int
}

// New builds a materializer that only accepts the given templates. An
// unknown template is a configuration mismatch and fails the call.
func New(log *logrus.Logger, templates ...string) *Materializer {
	known := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		known[t] = struct{}{}
	}
	return &Materializer{
		log:        log,
		templates:  known,
		entries:    map[world.Handle]Entry{},
		byTemplate: map[string]int{},
	}
}

func (m *Materializer) Materialize(req ports.MaterializeRequest) (world.Handle, error) {
	if _, ok := m.templates[req.Template]; !ok {
		return "", fmt.Errorf("unknown template %q", req.Template)
	}
	if !req.Facing.Valid() {
		return "", fmt.Errorf("invalid facing %d", int(req.Facing))
	}

	h := world.Handle(uuid.NewString())
	e := Entry{
		Handle:   h,
		Coord:    req.Coord,
		Template: req.Template,
		YawDeg:   req.Facing.YawDegrees(),
	}

	m.mu.Lock()
	m.entries[h] = e
	m.byTemplate[req.Template]++
	m.mu.Unlock()

	if m.log != nil {
		m.log.WithFields(logrus.Fields{
			"coord":    req.Coord.String(),
			"template": req.Template,
			"yaw":      e.YawDeg,
			"anchor_x": req.Anchor.X(),
			"anchor_z": req.Anchor.Z(),
		}).Debug("chunk materialized")
	}
	return h, nil
}

func (m *Materializer) Lookup(h world.Handle) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[h]
	return e, ok
}

func (m *Materializer) CountByTemplate() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.byTemplate))
	for k, v := range m.byTemplate {
		out[k] = v
	}
	return out
}
