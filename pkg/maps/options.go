package maps

// ControlPosition mirrors the widget's UI placement constants.
type ControlPosition string

// Widget control placements.
const (
	ControlTopLeft     ControlPosition = "top_left"
	ControlTopRight    ControlPosition = "top_right"
	ControlBottomLeft  ControlPosition = "bottom_left"
	ControlBottomRight ControlPosition = "bottom_right"
	ControlRightBottom ControlPosition = "right_bottom"
	ControlLeftBottom  ControlPosition = "left_bottom"
)

// ZoomControlStyle mirrors the widget's zoom control style constants.
type ZoomControlStyle string

// Zoom control styles.
const (
	ZoomControlDefault ZoomControlStyle = "default"
	ZoomControlSmall   ZoomControlStyle = "small"
	ZoomControlLarge   ZoomControlStyle = "large"
)

// MapOptions carries the construction options for the widget-side map.
// Only the fields here are recognized; the widget ignores anything else.
type MapOptions struct {
	Center              LatLng           `json:"center"`
	Zoom                int              `json:"zoom"`
	DisableDefaultUI    bool             `json:"disableDefaultUI"`
	ZoomControl         bool             `json:"zoomControl"`
	ZoomControlPosition ControlPosition  `json:"zoomControlPosition,omitempty"`
	ZoomControlStyle    ZoomControlStyle `json:"zoomControlStyle,omitempty"`
}

// MarkerOptions carries the construction options for one marker.
type MarkerOptions struct {
	Position LatLng `json:"position"`
	Icon     string `json:"icon,omitempty"`
	Title    string `json:"title,omitempty"`

	// OnClick is invoked when the user clicks this marker. Wired by
	// the driver, never serialized.
	OnClick Handler `json:"-"`
}
