package bridge

import (
	"encoding/json"
	"time"

	"github.com/mapstation/mapkit/pkg/maps"
)

// Message types exchanged with the shim page.
const (
	// Page -> Go messages
	MsgTypeReady     = "ready"
	MsgTypeLoadError = "load_error"
	MsgTypeEvent     = "event"
	MsgTypeResult    = "result"
	MsgTypePing      = "ping"

	// Go -> page commands
	MsgTypeMapInit      = "map_init"
	MsgTypeSetCenter    = "set_center"
	MsgTypeSetZoom      = "set_zoom"
	MsgTypeCreateMarker = "create_marker"
	MsgTypeMarkerSetMap = "marker_set_map"
	MsgTypeGetZoom      = "get_zoom"
	MsgTypePong         = "pong"
)

// Message is the envelope for everything crossing the socket.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// newMessage builds an envelope with the current timestamp.
func newMessage(msgType, id string, payload any) Message {
	return Message{
		Type:      msgType,
		ID:        id,
		Payload:   mustJSON(payload),
		Timestamp: time.Now().UnixMilli(),
	}
}

// LoadErrorPayload reports a failed widget script load from the page.
type LoadErrorPayload struct {
	Message   string `json:"message"`
	ScriptURL string `json:"scriptUrl,omitempty"`
}

// EventPayload carries a native widget event from the page. MarkerID is
// set for marker clicks; map-level events leave it empty.
type EventPayload struct {
	Event    string          `json:"event"`
	MarkerID string          `json:"markerId,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// SetCenterPayload repositions the widget view.
type SetCenterPayload struct {
	Position maps.LatLng `json:"position"`
}

// SetZoomPayload applies a new zoom level.
type SetZoomPayload struct {
	Zoom int `json:"zoom"`
}

// ZoomResultPayload answers a get_zoom request.
type ZoomResultPayload struct {
	Zoom int `json:"zoom"`
}

// CreateMarkerPayload places one marker on the widget.
type CreateMarkerPayload struct {
	MarkerID string      `json:"markerId"`
	Position maps.LatLng `json:"position"`
	Icon     string      `json:"icon,omitempty"`
	Title    string      `json:"title,omitempty"`
}

// MarkerSetMapPayload attaches or detaches a marker.
type MarkerSetMapPayload struct {
	MarkerID string `json:"markerId"`
	Attached bool   `json:"attached"`
}

func mustJSON(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
