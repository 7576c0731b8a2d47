// Package view renders the blog's HTML templates.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/util"
)

var pages = []string{
	config.TemplateIndex,
	config.TemplatePost,
	config.TemplateNewPost,
	config.TemplateWelcome,
	config.TemplateNotFound,
	config.TemplateError,
}

// Renderer holds every page parsed together with the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses the layout and each page found under the templates directory
// of fsys.
func New(fsys fs.FS) (*Renderer, error) {
	layout := path.Join(config.TemplatesLocalDir, config.TemplateLayout)

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, layout, path.Join(config.TemplatesLocalDir, page))
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, config.TemplateLayout, data); err != nil {
		return fmt.Errorf("error rendering %s: %w", page, err)
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HETag, util.ETag(buf.Bytes()))
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
