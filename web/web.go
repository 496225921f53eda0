// Package web embeds the HTML page templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var views embed.FS

// NewEngine returns a Fiber template engine over the embedded views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
