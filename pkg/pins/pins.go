// Package pins loads pin sets from YAML files. A pin set is the
// caller-side list of coordinates and payloads handed to the facade's
// AddMarkers; the facade never reads files itself.
package pins

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/maps"
)

// Pin is one entry of a pin set. Payload carries free-form fields that
// ride along as the pin's opaque click payload.
type Pin struct {
	Name    string         `yaml:"name,omitempty"`
	Lat     float64        `yaml:"lat"`
	Lng     float64        `yaml:"lng"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// Set is a named collection of pins.
type Set struct {
	Name string `yaml:"name,omitempty"`
	Pins []Pin  `yaml:"pins"`
}

// Load reads and parses a pin set file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	set, err := Parse(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return set, nil
}

// Parse decodes a pin set from YAML. A set must contain at least one
// pin; a missing name is allowed.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}

	if len(set.Pins) == 0 {
		return nil, errors.NewValidationError("pins", nil, "pin set contains no pins")
	}
	return &set, nil
}

// Entries converts the set into facade entries. Each entry's payload is
// the pin itself, so click callbacks see name, position, and the
// free-form payload fields.
func (s *Set) Entries() []maps.Entry {
	entries := make([]maps.Entry, len(s.Pins))
	for i, pin := range s.Pins {
		entries[i] = maps.Entry{
			Position: maps.LatLng{Lat: pin.Lat, Lng: pin.Lng},
			Data:     pin,
		}
	}
	return entries
}
