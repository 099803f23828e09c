// Package web serves the single-page assistant UI.
package web

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

// PageData is rendered into the page on load.
type PageData struct {
	NeedsCredential bool
	MaxUploadSize   int64
}

// Render writes the page.
func Render(w http.ResponseWriter, data PageData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return page.Execute(w, data)
}
