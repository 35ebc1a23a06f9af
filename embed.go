package impostor

import (
	"embed"
	"io/fs"
)

// Preset avatars and other assets served under /static/
//
//go:embed static
var staticFiles embed.FS

// StaticFS is the static directory rooted at its contents
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
