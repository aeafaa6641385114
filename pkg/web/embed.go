package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/partials/*.tpl
var templateFS embed.FS

//go:embed assets/*.css
var assetFS embed.FS

// TemplatesFS exposes the embedded pongo2 templates rooted at their
// directory, e.g. "edit.tpl" and "partials/navbar.tpl".
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return sub
}

// AssetsFS exposes the embedded theme stylesheets.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		return assetFS
	}
	return sub
}
