package memory

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Observer holds the last position reported by the movement input. Reads
// and writes may come from different goroutines.
type Observer struct {
	mu  sync.RWMutex
	pos mgl64.Vec3
}

func NewObserver(start mgl64.Vec3) *Observer {
	return &Observer{pos: start}
}

func (o *Observer) Position() mgl64.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pos
}

func (o *Observer) MoveTo(pos mgl64.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pos = pos
}

// MoveBy shifts the observer by delta. When check is set the shifted
// position is committed only if check accepts it; otherwise the observer
// stays put and the current position is returned with the error.
func (o *Observer) MoveBy(delta mgl64.Vec3, check func(mgl64.Vec3) error) (mgl64.Vec3, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := o.pos.Add(delta)
	if check != nil {
		if err := check(next); err != nil {
			return o.pos, err
		}
	}
	o.pos = next
	return o.pos, nil
}
