package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/styles.css
var stylesheet []byte

// loadTemplates parses the board page templates. A nil fsys uses the embedded set.
func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("open embedded templates: %w", err)
		}
		fsys = sub
	}
	indexTmpl, err := template.New("index").ParseFS(fsys, "index.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse index templates: %w", err)
	}
	return map[string]*template.Template{
		"index": indexTmpl,
	}, nil
}
