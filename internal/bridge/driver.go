package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mapstation/mapkit/pkg/maps"
)

// driver adapts the bridge to the maps.Driver capability set.
type driver struct {
	b *Bridge
}

// Compile-time interface check to ensure proper implementation.
var _ maps.Driver = (*driver)(nil)

// Init constructs the widget-side map on the connected page.
func (d *driver) Init(o maps.MapOptions) error {
	return d.b.send(newMessage(MsgTypeMapInit, "", o))
}

// SetCenter repositions the widget view.
func (d *driver) SetCenter(pos maps.LatLng) {
	if err := d.b.send(newMessage(MsgTypeSetCenter, "", SetCenterPayload{Position: pos})); err != nil {
		d.b.logger.Warn().Err(err).Msg("set_center failed")
	}
}

// SetZoom applies a new zoom level on the widget.
func (d *driver) SetZoom(level int) {
	if err := d.b.send(newMessage(MsgTypeSetZoom, "", SetZoomPayload{Zoom: level})); err != nil {
		d.b.logger.Warn().Err(err).Msg("set_zoom failed")
	}
}

// Zoom asks the page for the widget's current zoom level. A page that
// does not answer in time reads as zoom 0.
func (d *driver) Zoom() int {
	msg, err := d.b.request(MsgTypeGetZoom, nil)
	if err != nil {
		d.b.logger.Warn().Err(err).Msg("get_zoom failed")
		return 0
	}

	var p ZoomResultPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		d.b.logger.Warn().Err(err).Msg("Malformed zoom result")
		return 0
	}
	return p.Zoom
}

// CreateMarker places a marker on the widget and registers its click
// callback under a bridge-assigned marker id.
func (d *driver) CreateMarker(o maps.MarkerOptions) (maps.Marker, error) {
	id := fmt.Sprintf("m%d", d.b.markerSeq.Add(1))

	if o.OnClick != nil {
		d.b.listenersMu.Lock()
		d.b.markerClicks[id] = o.OnClick
		d.b.listenersMu.Unlock()
	}

	err := d.b.send(newMessage(MsgTypeCreateMarker, "", CreateMarkerPayload{
		MarkerID: id,
		Position: o.Position,
		Icon:     o.Icon,
		Title:    o.Title,
	}))
	if err != nil {
		return nil, err
	}

	return &marker{b: d.b, id: id, position: o.Position, attached: true}, nil
}

// AddListener subscribes to a native map-level widget event.
func (d *driver) AddListener(ev maps.Event, fn maps.Handler) {
	if fn == nil {
		return
	}
	d.b.listenersMu.Lock()
	d.b.listeners[ev] = append(d.b.listeners[ev], fn)
	d.b.listenersMu.Unlock()
}

// marker is a bridge-backed maps.Marker.
type marker struct {
	b        *Bridge
	id       string
	position maps.LatLng

	mu       sync.Mutex
	attached bool
}

// SetMap attaches or detaches the widget-side marker.
func (m *marker) SetMap(attached bool) {
	err := m.b.send(newMessage(MsgTypeMarkerSetMap, "", MarkerSetMapPayload{
		MarkerID: m.id,
		Attached: attached,
	}))
	if err != nil {
		m.b.logger.Warn().Err(err).Str("marker", m.id).Msg("marker_set_map failed")
		return
	}

	m.mu.Lock()
	m.attached = attached
	m.mu.Unlock()
}

// Attached reports the marker's last acknowledged visibility.
func (m *marker) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached
}

// Position returns the marker's coordinates.
func (m *marker) Position() maps.LatLng {
	return m.position
}
