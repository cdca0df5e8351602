// Package render turns records into inert HTML fragments.
//
// A Renderer tries its strategies in order. A strategy is skipped when it
// does not know the template or when the template renders no content; any
// other failure is final. When every strategy has been exhausted the caller
// receives a *TemplateError.
package render

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Strategy is one way of turning a template name and data into markup.
type Strategy interface {
	Name() string
	Has(name string) bool
	Execute(ctx context.Context, name string, data any) (string, error)
}

// Renderer renders named templates through an ordered list of strategies.
type Renderer struct {
	strategies []Strategy
	policy     *bluemonday.Policy
	logger     *zap.Logger
	registry   *Registry
}

// Options configures Configure.
type Options struct {
	// Fallback is where raw template sources are fetched from when the
	// registered set cannot serve a name. Defaults to the template root.
	Fallback Source
	Funcs    template.FuncMap
	Logger   *zap.Logger
}

// Configure parses the template root and wires the registered strategy
// followed by the raw-source fallback.
func Configure(root fs.FS, opts Options) (*Renderer, error) {
	funcs := DefaultFuncs()
	for k, v := range opts.Funcs {
		funcs[k] = v
	}
	reg, err := NewRegistry(root, funcs)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = FSSource{FS: root}
	}
	r := New(opts.Logger, reg, NewSourceStrategy(fallback, funcs))
	r.registry = reg
	return r, nil
}

// New builds a Renderer over explicit strategies.
func New(logger *zap.Logger, strategies ...Strategy) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		strategies: strategies,
		policy:     FragmentPolicy(),
		logger:     logger,
	}
}

// Registry returns the registered template set, or nil when the renderer was
// built without one.
func (r *Renderer) Registry() *Registry { return r.registry }

// Render produces a sanitized fragment for name.
func (r *Renderer) Render(ctx context.Context, name string, data any) (template.HTML, error) {
	var causes []error
	for _, s := range r.strategies {
		if !s.Has(name) {
			causes = append(causes, fmt.Errorf("%s: %w", s.Name(), ErrUnknownTemplate))
			continue
		}
		out, err := s.Execute(ctx, name, data)
		if err == nil && !hasOutput(out) {
			err = ErrNoOutput
		}
		if err != nil {
			causes = append(causes, fmt.Errorf("%s: %w", s.Name(), err))
			if errors.Is(err, ErrUnknownTemplate) || errors.Is(err, ErrNoOutput) {
				r.logger.Debug("template strategy skipped",
					zap.String("template", name),
					zap.String("strategy", s.Name()),
					zap.Error(err),
				)
				continue
			}
			break
		}
		return template.HTML(r.policy.Sanitize(out)), nil
	}
	if len(causes) == 0 {
		causes = append(causes, errors.New("no rendering strategy configured"))
	}
	return "", &TemplateError{Name: name, Err: errors.Join(causes...)}
}

// RenderEach renders name once per item and concatenates the fragments.
func RenderEach[T any](ctx context.Context, r *Renderer, name string, items []T) (template.HTML, error) {
	var out template.HTML
	for _, it := range items {
		frag, err := r.Render(ctx, name, it)
		if err != nil {
			return "", err
		}
		out += frag
	}
	return out, nil
}

// DefaultFuncs are available to every template.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
	}
}
