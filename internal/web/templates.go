// Package web renders the twitter-clone pages: the three feeds, the tweet
// cards inside them and the infinite-scroll fragments appended by the browser.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed HTML templates for the web interface.
type Templates struct {
	templates *template.Template
}

// NewTemplates creates a new Templates instance by parsing all embedded templates.
func NewTemplates() (*Templates, error) {
	tmpl, err := template.New("web").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{templates: tmpl}, nil
}

var templateFuncs = template.FuncMap{
	"initial": func(name string) string {
		for _, r := range name {
			return string(r)
		}
		return "?"
	},
}

// Render renders a named template with the provided data to the response writer.
// The template is executed into a buffer first so a failing template never
// leaves a half-written page behind.
func (t *Templates) Render(w http.ResponseWriter, name string, data interface{}) error {
	return t.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code
func (t *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
