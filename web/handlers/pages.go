package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ritualgrammar/navigator/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the server-side HTML views.
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

type indexPage struct {
	Title    string
	Inferred bool
}

type treePage struct {
	Title    string
	Inferred bool
	Nodes    []types.TreeNode
	Notice   string
	Error    string
}

type sparqlPage struct {
	Title        string
	Inferred     bool
	Query        string
	Result       *types.QueryResult
	Unconfigured bool
}

// render buffers the named template; a failed template never writes a
// partial page.
func (p *Pages) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
