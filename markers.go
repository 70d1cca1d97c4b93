package mapkit

import (
	"github.com/mapstation/mapkit/pkg/logging"
	"github.com/mapstation/mapkit/pkg/maps"
)

// Marker pairs a widget-owned pin handle with the caller's opaque
// payload. Handles live until DeleteMarkers discards them; ClearMarkers
// only hides them.
type Marker struct {
	handle maps.Marker

	// Data is the payload supplied at creation time.
	Data any
}

// Handle returns the widget-side marker handle.
func (m *Marker) Handle() maps.Marker {
	return m.handle
}

// Position returns the marker's coordinates.
func (m *Marker) Position() maps.LatLng {
	return m.handle.Position()
}

// AddMarkers places one marker per entry and appends the handles to the
// internal list. Each marker's click fires onClick with that entry's
// payload. There is no de-duplication: repeated calls accumulate.
func (m *Map) AddMarkers(entries []maps.Entry, onClick maps.Handler) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		data := entry.Data
		opts := maps.MarkerOptions{
			Position: entry.Position,
			Icon:     m.options.iconPath,
		}
		if onClick != nil {
			opts.OnClick = func(any) { onClick(data) }
		}

		handle, err := m.driver.CreateMarker(opts)
		if err != nil {
			// A marker the widget refused is dropped, not fatal.
			logging.Warn().Err(err).
				Float64("lat", entry.Position.Lat).
				Float64("lng", entry.Position.Lng).
				Msg("Marker creation failed")
			continue
		}

		m.markers = append(m.markers, &Marker{handle: handle, Data: data})
	}

	return m
}

// SetAllMap attaches every stored marker to the live widget, or detaches
// all of them when attached is false.
func (m *Map) SetAllMap(attached bool) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, marker := range m.markers {
		marker.handle.SetMap(attached)
	}
	return m
}

// ClearMarkers hides all markers without discarding their handles.
// The marker list length is unchanged.
func (m *Map) ClearMarkers() *Map {
	return m.SetAllMap(false)
}

// ShowMarkers re-attaches all stored markers to the live widget.
func (m *Map) ShowMarkers() *Map {
	return m.SetAllMap(true)
}

// DeleteMarkers hides all markers and empties the handle list. Prior
// handles become unreachable through the facade.
func (m *Map) DeleteMarkers() *Map {
	m.ClearMarkers()

	m.mu.Lock()
	m.markers = nil
	m.mu.Unlock()
	return m
}

// Markers returns the stored marker handles, in insertion order.
func (m *Map) Markers() []*Marker {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Marker, len(m.markers))
	copy(out, m.markers)
	return out
}
