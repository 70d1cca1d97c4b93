package mapkit

import (
	"github.com/mapstation/mapkit/pkg/maps"
)

// DefaultIconPath is the marker icon used when no icon option is given.
const DefaultIconPath = "assets/pin.png"

// Option is a function that configures a Map instance
type Option func(*options) error

// options holds the recognized construction options. There is no bag of
// arbitrary keys: anything the widget would not recognize simply has no
// Option here.
type options struct {
	iconPath            string
	zoom                int
	center              maps.LatLng
	disableDefaultUI    bool
	zoomControl         bool
	zoomControlPosition maps.ControlPosition
	zoomControlStyle    maps.ZoomControlStyle
}

// defaults returns the default construction options.
func defaults() *options {
	return &options{
		iconPath:            DefaultIconPath,
		zoom:                15,
		disableDefaultUI:    true,
		zoomControl:         true,
		zoomControlPosition: maps.ControlRightBottom,
		zoomControlStyle:    maps.ZoomControlSmall,
	}
}

// apply applies the given options, returning the receiver.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// mapOptions converts to the widget-side construction options.
func (o *options) mapOptions() maps.MapOptions {
	return maps.MapOptions{
		Center:              o.center,
		Zoom:                o.zoom,
		DisableDefaultUI:    o.disableDefaultUI,
		ZoomControl:         o.zoomControl,
		ZoomControlPosition: o.zoomControlPosition,
		ZoomControlStyle:    o.zoomControlStyle,
	}
}

// WithIcon configures the marker icon path.
func WithIcon(path string) Option {
	return func(o *options) error {
		o.iconPath = path
		return nil
	}
}

// WithZoom configures the initial zoom level.
func WithZoom(level int) Option {
	return func(o *options) error {
		o.zoom = level
		return nil
	}
}

// WithCenter configures the initial center position.
func WithCenter(lat, lng float64) Option {
	return func(o *options) error {
		o.center = maps.LatLng{Lat: lat, Lng: lng}
		return nil
	}
}

// WithDefaultUI configures whether the widget shows its default chrome.
func WithDefaultUI(enabled bool) Option {
	return func(o *options) error {
		o.disableDefaultUI = !enabled
		return nil
	}
}

// WithZoomControl configures the zoom control's placement and style.
func WithZoomControl(position maps.ControlPosition, style maps.ZoomControlStyle) Option {
	return func(o *options) error {
		o.zoomControl = true
		o.zoomControlPosition = position
		o.zoomControlStyle = style
		return nil
	}
}

// WithoutZoomControl hides the widget's zoom control.
func WithoutZoomControl() Option {
	return func(o *options) error {
		o.zoomControl = false
		return nil
	}
}
