// Package web embeds the gateway's HTML pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page; names are the file base names, e.g. "login.html".
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
