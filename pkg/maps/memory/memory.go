// Package memory provides an in-memory map driver. It records every
// command the facade issues and can replay native widget events, which
// makes it the reference driver for tests and offline runs. Nothing is
// rendered.
package memory

import (
	"sync"

	"github.com/mapstation/mapkit/pkg/maps"
)

// Option is a function that configures a memory Driver
type Option func(*Driver)

// WithZoom presets the driver's zoom level before Init.
func WithZoom(level int) Option {
	return func(d *Driver) {
		d.zoom = level
	}
}

// Driver is an in-memory implementation of maps.Driver.
type Driver struct {
	mu          sync.Mutex
	initialized bool
	options     maps.MapOptions
	center      maps.LatLng
	zoom        int
	markers     []*Marker
	listeners   map[maps.Event][]maps.Handler
}

// Compile-time interface check to ensure proper implementation.
var _ maps.Driver = (*Driver)(nil)

// New creates an in-memory driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		listeners: make(map[maps.Event][]maps.Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init records the widget construction options.
func (d *Driver) Init(o maps.MapOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = true
	d.options = o
	d.center = o.Center
	d.zoom = o.Zoom
	return nil
}

// Initialized reports whether Init has been called.
func (d *Driver) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// Options returns the construction options recorded by Init.
func (d *Driver) Options() maps.MapOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.options
}

// SetCenter records the new view center.
func (d *Driver) SetCenter(pos maps.LatLng) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.center = pos
}

// Center returns the recorded view center.
func (d *Driver) Center() maps.LatLng {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.center
}

// SetZoom records the new zoom level.
func (d *Driver) SetZoom(level int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.zoom = level
}

// Zoom returns the recorded zoom level.
func (d *Driver) Zoom() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zoom
}

// CreateMarker records a new marker, attached to the widget.
func (d *Driver) CreateMarker(o maps.MarkerOptions) (maps.Marker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := &Marker{options: o, attached: true}
	d.markers = append(d.markers, m)
	return m, nil
}

// Markers returns every marker ever created, in creation order.
func (d *Driver) Markers() []*Marker {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Marker, len(d.markers))
	copy(out, d.markers)
	return out
}

// AttachedCount returns how many created markers are currently visible.
func (d *Driver) AttachedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, m := range d.markers {
		if m.Attached() {
			n++
		}
	}
	return n
}

// AddListener subscribes to a simulated native event.
func (d *Driver) AddListener(ev maps.Event, fn maps.Handler) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[ev] = append(d.listeners[ev], fn)
}

// Emit simulates the widget firing a native event.
func (d *Driver) Emit(ev maps.Event, payload any) {
	d.mu.Lock()
	fns := append([]maps.Handler(nil), d.listeners[ev]...)
	d.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// Marker is an in-memory implementation of maps.Marker.
type Marker struct {
	mu       sync.Mutex
	options  maps.MarkerOptions
	attached bool
}

// SetMap attaches or detaches the marker.
func (m *Marker) SetMap(attached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = attached
}

// Attached reports whether the marker is visible.
func (m *Marker) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached
}

// Position returns the marker's coordinates.
func (m *Marker) Position() maps.LatLng {
	return m.options.Position
}

// Icon returns the marker's icon path.
func (m *Marker) Icon() string {
	return m.options.Icon
}

// Click simulates the user clicking this marker.
func (m *Marker) Click() {
	m.mu.Lock()
	fn := m.options.OnClick
	m.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}
