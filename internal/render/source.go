package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"finitefield.org/egypt-online-web/internal/resource"
)

// Source returns the raw text of a template by name.
type Source interface {
	Open(ctx context.Context, name string) (string, error)
}

// FSSource reads template sources from a file tree.
type FSSource struct {
	FS fs.FS
}

// Open implements Source.
func (s FSSource) Open(_ context.Context, name string) (string, error) {
	clean := path.Clean(strings.TrimLeft(name, "/"))
	b, err := fs.ReadFile(s.FS, clean)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoaderSource reads template sources through a resource loader, which lets
// templates live on the same static host as the data files.
type LoaderSource struct {
	Loader *resource.Loader
}

// Open implements Source.
func (s LoaderSource) Open(ctx context.Context, name string) (string, error) {
	b, err := s.Loader.Raw(ctx, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SourceStrategy fetches a template's text on demand and renders it as a
// standalone template. It is the fallback behind Registry.
type SourceStrategy struct {
	src   Source
	funcs template.FuncMap
}

// NewSourceStrategy wraps src.
func NewSourceStrategy(src Source, funcs template.FuncMap) *SourceStrategy {
	return &SourceStrategy{src: src, funcs: funcs}
}

// Name implements Strategy.
func (s *SourceStrategy) Name() string { return "source" }

// Has implements Strategy. Any name may exist at the source; Execute finds out.
func (s *SourceStrategy) Has(string) bool { return s != nil && s.src != nil }

// Execute implements Strategy.
func (s *SourceStrategy) Execute(ctx context.Context, name string, data any) (string, error) {
	text, err := s.src.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", ErrUnknownTemplate, err)
		}
		return "", fmt.Errorf("fetch source: %w", err)
	}
	t, err := template.New(name).Funcs(s.funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse source: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
