// Package page provides the embedded shim page that loads the external
// map widget script in a browser and relays bridge commands to it.
package page

import (
	"embed"
)

//go:embed dist/*
var staticFiles embed.FS

// IndexHTML returns the shim page template source. The bridge renders it
// with the configured widget script URL.
func IndexHTML() ([]byte, error) {
	return staticFiles.ReadFile("dist/index.html")
}
