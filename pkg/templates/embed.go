package templates

import (
	"embed"
	"io/fs"
)

//go:embed core/*.html
var coreTemplates embed.FS

// CoreFS returns the bundled core template set rooted at the template files
// themselves.
func CoreFS() fs.FS {
	sub, err := fs.Sub(coreTemplates, "core")
	if err != nil {
		panic("templates: core templates missing from binary: " + err.Error())
	}
	return sub
}
