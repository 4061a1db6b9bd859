// Package web holds the browser side of the search widget: the page
// template and the script that forwards input events to the server.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed static templates
var files embed.FS

// Static serves the files under static/ at their bare names.
var Static = mustSub(files, "static")

// Page is the search page. It expects a PageData.
var Page = template.Must(template.ParseFS(files, "templates/page.html"))

// PageData fills the search page. Results is pre-rendered list markup.
type PageData struct {
	Title   string
	Query   string
	Results template.HTML
	State   string
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
