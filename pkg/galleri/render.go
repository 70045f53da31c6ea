package galleri

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"
)

//go:embed assets/default/index.html
var defaultIndexTmpl string

// IndexTemplate is the template used for album pages.
var IndexTemplate = "index.html"

// Renderer turns an album context into page markup.
type Renderer interface {
	Render(name string, c *Context) ([]byte, error)
}

// TemplateRenderer renders html/template files from a theme.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses themeDir/templates/*.html, or the built-in page if the theme has none.
func NewTemplateRenderer(themeDir string) (*TemplateRenderer, error) {
	glob := filepath.Join(themeDir, "templates", "*.html")
	ms, err := filepath.Glob(glob)
	if err != nil {
		return nil, &TemplateError{Name: glob, Err: err}
	}

	t := template.New("").Funcs(tmplFunctions())
	if len(ms) == 0 {
		klog.Infof("no templates in %s, using built-in theme", glob)
		if _, err := t.New(IndexTemplate).Parse(defaultIndexTmpl); err != nil {
			return nil, &TemplateError{Name: IndexTemplate, Err: err}
		}
		return &TemplateRenderer{tmpl: t}, nil
	}

	klog.V(1).Infof("parsing %d templates from %s", len(ms), glob)
	if _, err := t.ParseFiles(ms...); err != nil {
		return nil, &TemplateError{Name: glob, Err: err}
	}
	return &TemplateRenderer{tmpl: t}, nil
}

func (r *TemplateRenderer) Render(name string, c *Context) ([]byte, error) {
	var tpl bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&tpl, name, c); err != nil {
		return nil, &TemplateError{Name: name, Err: fmt.Errorf("execute: %w", err)}
	}
	return tpl.Bytes(), nil
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"AlbumName": func(s string) string {
			return strings.TrimSuffix(s, "/")
		},
	}
}
