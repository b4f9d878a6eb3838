// Package web holds the server-rendered page shells.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates. It panics on a malformed
// template since they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
