// Package maps defines the capability surface of the external map widget.
// The widget itself (rendering, tiling, geocoding) lives outside this
// module; everything here is an opaque handle or a command the widget
// understands. Drivers adapt a concrete widget to the Driver interface:
// the browser bridge drives the real JavaScript widget, and the memory
// driver provides an offline stand-in for tests.
package maps

// Event identifies a native widget event the facade can subscribe to.
type Event string

// Native widget events.
const (
	// EventClick fires when the user clicks the map surface.
	EventClick Event = "click"

	// EventZoomChanged fires after the widget's zoom level changes.
	EventZoomChanged Event = "zoom_changed"
)

// Handler is a callback invoked with an event's payload.
type Handler func(payload any)

// LatLng is a geographic coordinate pair. Values are passed through to
// the widget without range validation; out-of-range behavior is the
// widget's to define.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Entry is one pin to place: a position plus an opaque payload the
// caller gets back when the pin is clicked.
type Entry struct {
	Position LatLng
	Data     any
}

// Driver is the opaque capability set the facade needs from a map
// widget: construct, recenter, zoom, create markers, and subscribe to
// native events. Implementations are not required to be safe for
// concurrent use; the facade serializes its own calls.
type Driver interface {
	// Init constructs the widget-side map with the given options.
	// Called once per facade instance.
	Init(o MapOptions) error

	// SetCenter repositions the view.
	SetCenter(pos LatLng)

	// SetZoom applies a new zoom level.
	SetZoom(level int)

	// Zoom reports the widget's current zoom level.
	Zoom() int

	// CreateMarker places a marker on the widget and returns its handle.
	CreateMarker(o MarkerOptions) (Marker, error)

	// AddListener subscribes to a native widget event.
	AddListener(ev Event, fn Handler)
}

// Marker is a widget-owned pin handle. Detaching hides the pin without
// destroying it; re-attaching makes it visible again.
type Marker interface {
	// SetMap attaches the marker to the live widget or detaches it.
	SetMap(attached bool)

	// Attached reports whether the marker is currently visible.
	Attached() bool

	// Position returns the marker's coordinates.
	Position() LatLng
}
