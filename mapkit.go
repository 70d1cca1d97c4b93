// Package mapkit is a thin fluent facade over an external map widget.
// It places a map, drops pins, and wires click/zoom callbacks; all
// rendering stays inside the widget, reached through a maps.Driver.
//
// Example usage:
//
//	m, err := mapkit.New(driver,
//	    mapkit.WithCenter(35.6812, 139.7671),
//	    mapkit.WithZoom(15),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m.OnClick(func(payload any) {
//	    log.Printf("map clicked: %v", payload)
//	})
//
//	m.AddMarkers(entries, func(payload any) {
//	    log.Printf("pin clicked: %v", payload)
//	}).SetCenter(35.6812, 139.7671)
package mapkit

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/logging"
	"github.com/mapstation/mapkit/pkg/maps"
)

// Map is the facade over one widget-side map instance. Every mutator
// returns the receiver so calls chain. A Map owns the markers added
// through it and the callbacks registered on it; the widget owns
// everything visual.
type Map struct {
	driver  maps.Driver
	options *options
	hooks   *hooks

	mu      sync.Mutex
	markers []*Marker
}

// New constructs a facade against a loaded widget driver. The widget-side
// map is created immediately with the configured options, and its native
// click and zoom-changed events are wired into the facade's callback
// registries. A nil driver means the widget library never became
// available; that is terminal and reported here, not retried.
func New(driver maps.Driver, opts ...Option) (*Map, error) {
	if driver == nil {
		return nil, fmt.Errorf("constructing facade: %w", errors.ErrDriverNotLoaded)
	}

	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	m := &Map{
		driver:  driver,
		options: o,
		hooks:   newHooks(),
	}

	if err := driver.Init(o.mapOptions()); err != nil {
		return nil, fmt.Errorf("constructing widget map: %w", err)
	}

	// Native widget events feed the registered callback lists.
	driver.AddListener(maps.EventClick, func(payload any) {
		m.onMapInteract(maps.EventClick, payload)
	})
	driver.AddListener(maps.EventZoomChanged, func(payload any) {
		m.onMapInteract(maps.EventZoomChanged, payload)
	})

	return m, nil
}

// SetCenter repositions the view. Coordinates are passed through without
// range validation; out-of-range values are the widget's to interpret.
func (m *Map) SetCenter(lat, lng float64) *Map {
	m.driver.SetCenter(maps.LatLng{Lat: lat, Lng: lng})
	return m
}

// SetZoom applies a new zoom level if the argument is numeric.
// Anything else leaves the widget untouched.
func (m *Map) SetZoom(level any) *Map {
	if n, ok := asInt(level); ok {
		m.driver.SetZoom(n)
	}
	return m
}

// Zoom proxies the widget's current zoom level.
func (m *Map) Zoom() int {
	return m.driver.Zoom()
}

// OnClick appends a callback for map click events. Nil callbacks are
// silently ignored.
func (m *Map) OnClick(fn maps.Handler) *Map {
	m.hooks.add(maps.EventClick, fn)
	return m
}

// OnZoomChanged appends a callback for zoom change events. Nil callbacks
// are silently ignored.
func (m *Map) OnZoomChanged(fn maps.Handler) *Map {
	m.hooks.add(maps.EventZoomChanged, fn)
	return m
}

// onMapInteract invokes every callback registered for the event with the
// given payload, in registration order.
func (m *Map) onMapInteract(ev maps.Event, payload any) {
	m.hooks.fire(ev, payload)
}

// asInt reports whether v is a numeric value, converting it to int.
func asInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int(rv.Float()), true
	default:
		logging.Debug().Str("kind", rv.Kind().String()).Msg("Ignoring non-numeric zoom level")
		return 0, false
	}
}
