package mapkit

import (
	"sync"

	"github.com/mapstation/mapkit/pkg/maps"
)

// hooks manages the callback registries for map events. Callbacks run in
// registration order. The mutex is here because bridge drivers deliver
// events from their read-loop goroutine.
type hooks struct {
	mu            sync.RWMutex
	onClick       []maps.Handler
	onZoomChanged []maps.Handler
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// add appends a callback to the registry for the event. Nil callbacks
// are silently ignored.
func (h *hooks) add(ev maps.Event, fn maps.Handler) {
	if fn == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch ev {
	case maps.EventClick:
		h.onClick = append(h.onClick, fn)
	case maps.EventZoomChanged:
		h.onZoomChanged = append(h.onZoomChanged, fn)
	}
}

// fire invokes every callback registered for the event with the payload,
// in registration order. Callbacks run outside the lock so they may
// register further callbacks.
func (h *hooks) fire(ev maps.Event, payload any) {
	h.mu.RLock()
	var fns []maps.Handler
	switch ev {
	case maps.EventClick:
		fns = append(fns, h.onClick...)
	case maps.EventZoomChanged:
		fns = append(fns, h.onZoomChanged...)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// count returns the number of callbacks registered for the event.
func (h *hooks) count(ev maps.Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch ev {
	case maps.EventClick:
		return len(h.onClick)
	case maps.EventZoomChanged:
		return len(h.onZoomChanged)
	}
	return 0
}
