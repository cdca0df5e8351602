package page

import (
	"context"
	"html/template"
	"time"

	"finitefield.org/egypt-online-web/internal/chart"
)

// State is a section's lifecycle position. Rendered and Failed are terminal.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Load carries the state shared by the sections of one page load.
type Load struct {
	Doc    *Document
	Cache  *Cache
	Charts *chart.Board
}

// RunFunc loads, validates and renders a section's fragment.
type RunFunc func(ctx context.Context, load *Load) (template.HTML, error)

// Section is one independently rendered region of a page.
type Section struct {
	Name      string
	Container string
	// Title heads the error card mounted on failure.
	Title string
	Run   RunFunc
	// FallbackText, when set, is mounted as plain text instead of an error
	// card and the failure is swallowed.
	FallbackText string
}

// Outcome records how a section ended.
type Outcome struct {
	Section  string
	States   []State
	Err      error
	Duration time.Duration
}

// Final returns the terminal state.
func (o Outcome) Final() State {
	if len(o.States) == 0 {
		return Idle
	}
	return o.States[len(o.States)-1]
}
