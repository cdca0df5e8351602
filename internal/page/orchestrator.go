package page

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/egypt-online-web/internal/chart"
)

// CardFunc renders the error card mounted into a failed section's container.
type CardFunc func(ctx context.Context, title, message string) template.HTML

// Page lists a page's containers and the sections that fill them.
type Page struct {
	Name       string
	Containers []string
	Sections   []Section
}

// Result is the outcome of one page load.
type Result struct {
	Doc      *Document
	Load     *Load
	Outcomes []Outcome
}

// Outcome returns the outcome recorded for section name.
func (r *Result) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Section == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Orchestrator runs page loads.
type Orchestrator struct {
	logger *zap.Logger
	card   CardFunc
}

// NewOrchestrator builds an orchestrator. A nil card uses LiteralCard.
func NewOrchestrator(logger *zap.Logger, card CardFunc) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if card == nil {
		card = func(_ context.Context, title, message string) template.HTML {
			return LiteralCard(title, message)
		}
	}
	return &Orchestrator{logger: logger, card: card}
}

// Begin starts a page load: a fresh document, cache and chart board.
func (o *Orchestrator) Begin(p Page) *Load {
	return &Load{
		Doc:    NewDocument(p.Containers...),
		Cache:  NewCache(),
		Charts: chart.NewBoard(),
	}
}

// Render launches every section of p concurrently and waits for all of them.
// Sections never return errors to each other; each failure stays in its own
// container.
func (o *Orchestrator) Render(ctx context.Context, p Page) *Result {
	return o.RenderLoad(ctx, p, o.Begin(p))
}

// RenderLoad is Render over a load started with Begin, for callers that add
// their own work to the same load.
func (o *Orchestrator) RenderLoad(ctx context.Context, p Page, load *Load) *Result {
	res := &Result{Doc: load.Doc, Load: load, Outcomes: make([]Outcome, len(p.Sections))}
	var g errgroup.Group
	for i, s := range p.Sections {
		g.Go(func() error {
			res.Outcomes[i] = o.runSection(ctx, s, load)
			return nil
		})
	}
	_ = g.Wait()
	return res
}

func (o *Orchestrator) runSection(ctx context.Context, s Section, load *Load) (out Outcome) {
	start := time.Now()
	out = Outcome{Section: s.Name, States: []State{Idle}}
	log := o.logger.With(zap.String("section", s.Name), zap.String("container", s.Container))
	if !load.Doc.Has(s.Container) {
		log.Debug("container absent, section skipped")
		return out
	}

	out.States = append(out.States, Loading)
	frag, err := safeRun(ctx, s, load)
	out.Duration = time.Since(start)
	if err == nil {
		out.States = append(out.States, Rendered)
		load.Doc.Mount(s.Container, frag)
		log.Debug("section rendered", zap.Duration("duration", out.Duration))
		return out
	}

	out.States = append(out.States, Failed)
	out.Err = err
	if s.FallbackText != "" {
		load.Doc.SetText(s.Container, s.FallbackText)
		log.Debug("section fell back", zap.Error(err))
		return out
	}
	load.Doc.Mount(s.Container, o.card(ctx, s.Title, err.Error()))
	var pe *PanicError
	if errors.As(err, &pe) {
		log.Error("section panicked", zap.Any("panic", pe.Value), zap.ByteString("stack", pe.Stack))
		return out
	}
	log.Warn("section failed", zap.Error(err), zap.Duration("duration", out.Duration))
	return out
}

// PanicError is the failure recorded for a section, or a cached load, that
// panicked. Key is set for cached loads.
type PanicError struct {
	Section string
	Key     string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("load %s panicked: %v", e.Key, e.Value)
	}
	return fmt.Sprintf("section %s panicked: %v", e.Section, e.Value)
}

// safeRun turns a panic inside a section into that section's failure.
func safeRun(ctx context.Context, s Section, load *Load) (frag template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Section: s.Name, Value: r, Stack: debug.Stack()}
		}
	}()
	if s.Run == nil {
		return "", fmt.Errorf("section %s has no renderer", s.Name)
	}
	return s.Run(ctx, load)
}

var (
	literalOnce sync.Once
	literalTmpl *template.Template
)

// LiteralCard is the error card used when the template renderer is not
// available or cannot render the card itself.
func LiteralCard(title, message string) template.HTML {
	literalOnce.Do(func() {
		literalTmpl = template.Must(template.New("card").Parse(
			`<div class="card error-card" role="alert"><h3>{{.Title}}</h3><p>{{.Message}}</p></div>`))
	})
	var b strings.Builder
	_ = literalTmpl.Execute(&b, struct{ Title, Message string }{title, message})
	return template.HTML(b.String())
}
