package posyandu

import (
	"io/fs"

	"github.com/goliatone/go-posyandu/pkg/web"
)

// EmbeddedTemplates exposes the dashboard templates so callers can reuse or
// extend them without importing the web package directly.
func EmbeddedTemplates() fs.FS {
	return web.TemplatesFS()
}

// ThemeAssetsFS exposes the dashboard stylesheets.
//
// Typical mount:
//
//	mux.Handle("/assets/themes/posyandu/",
//	  http.StripPrefix("/assets/themes/posyandu/",
//	    http.FileServerFS(posyandu.ThemeAssetsFS()),
//	  ),
//	)
func ThemeAssetsFS() fs.FS {
	return web.AssetsFS()
}
