// Package views embeds the HTML templates rendered by the page handlers.
package views

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var files embed.FS

// NewEngine returns a Fiber view engine over the embedded templates.
func NewEngine(reload bool) *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFunc("join", strings.Join)
	engine.AddFunc("statusClass", statusClass)
	return engine
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "status-5xx"
	case status >= 400:
		return "status-4xx"
	case status >= 300:
		return "status-3xx"
	}
	return "status-2xx"
}
