package app

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/simp-lee/myproject/internal/domain"
)

// Template directories inside the web filesystem. Files under layoutDirs are
// shared by every page; every other .html file under templateRoot is a page
// named by its path below templateRoot, such as "admin/changelist.html".
const templateRoot = "templates"

var layoutDirs = []string{"layouts", "partials"}

// TemplateRenderer is gin's HTMLRender for the site. Each page is compiled
// on its own copy of the shared layouts so pages can redefine the same
// blocks. In debug mode pages are reloaded from fsys on every render.
type TemplateRenderer struct {
	fsys  fs.FS
	debug bool
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer compiles the templates in fsys. Outside debug mode a
// broken template fails here rather than on first render.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fsys: fsys, debug: debug}
	if debug {
		return r, nil
	}
	pages, err := compilePages(fsys)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.pages = pages
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	pages := r.pages
	if r.debug {
		var err error
		if pages, err = compilePages(r.fsys); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: pages[name], Name: name, Data: data}
}

func compilePages(fsys fs.FS) (map[string]*template.Template, error) {
	shared := template.New("").Funcs(templateFuncs())
	var pageFiles []string

	err := fs.WalkDir(fsys, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		if !isLayout(p) {
			pageFiles = append(pageFiles, p)
			return nil
		}
		return parseInto(shared, fsys, p, p)
	})
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, p := range pageFiles {
		t, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", p, err)
		}
		name := strings.TrimPrefix(p, templateRoot+"/")
		if err := parseInto(t, fsys, p, name); err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func isLayout(p string) bool {
	dir, _, _ := strings.Cut(strings.TrimPrefix(p, templateRoot+"/"), "/")
	return slices.Contains(layoutDirs, dir)
}

func parseInto(t *template.Template, fsys fs.FS, file, name string) error {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := t.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		// date prints the date part of t, as stored in date-only columns.
		"date": func(t time.Time) string { return t.Format(domain.DateLayout) },
		// plural picks one or many by count.
		"plural": func(n int64, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
}

// HTMLInstance renders one page.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

// Render executes the page, or reports why it cannot.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	switch {
	case h.err != nil:
		return h.err
	case h.Template == nil:
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets text/html unless a handler chose another type.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
}
