package mock

import (
	"fmt"
	"sync"

	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"
)

// Materializer records every request and hands out sequential handles.
// Set Err to make every call fail.
type Materializer struct {
	mu    sync.Mutex
	Err   error
	calls []ports.MaterializeRequest
}

func (m *Materializer) Materialize(req ports.MaterializeRequest) (world.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.calls = append(m.calls, req)
	return world.Handle(fmt.Sprintf("mock-%d", len(m.calls))), nil
}

func (m *Materializer) Calls() []ports.MaterializeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.MaterializeRequest(nil), m.calls...)
}
