// Package static holds the browser page served at the root of the HTTP server.
package static

import (
	"embed"
	"io/fs"
)

//go:embed index.html app.js style.css assets
var embeddedFS embed.FS

// FS returns the embedded page files
func FS() fs.FS {
	return embeddedFS
}
