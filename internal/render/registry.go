package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// Registry holds templates parsed ahead of time from a template root. Each
// *.tmpl file is registered under its slash-separated path relative to the
// root, e.g. "fragments/isp.tmpl".
type Registry struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu  sync.RWMutex
	set *template.Template
}

// NewRegistry parses every *.tmpl file under fsys.
func NewRegistry(fsys fs.FS, funcs template.FuncMap) (*Registry, error) {
	r := &Registry{fsys: fsys, funcs: funcs}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reparses the template root. On failure the previous set stays active.
func (r *Registry) Reload() error {
	set, err := parseTree(r.fsys, r.funcs)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.set = set
	r.mu.Unlock()
	return nil
}

// Template returns the current set, for callers that execute layouts directly.
func (r *Registry) Template() *template.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set
}

// Name implements Strategy.
func (r *Registry) Name() string { return "registered" }

// Has implements Strategy.
func (r *Registry) Has(name string) bool {
	set := r.Template()
	return set != nil && set.Lookup(name) != nil
}

// Execute implements Strategy.
func (r *Registry) Execute(_ context.Context, name string, data any) (string, error) {
	set := r.Template()
	if set == nil || set.Lookup(name) == nil {
		return "", ErrUnknownTemplate
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseTree(fsys fs.FS, funcs template.FuncMap) (*template.Template, error) {
	// fs.Glob does not support **, so walk the tree.
	var files []string
	if err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, p)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found")
	}
	root := template.New("_root").Funcs(funcs)
	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		if _, err := root.New(path.Clean(file)).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}
	return root, nil
}
