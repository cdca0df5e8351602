// Package chart is the drawing sink for chart-backed sections. It does not
// draw anything itself: it emits a canvas carrying the chart configuration
// for the client-side charting widget.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Kind selects the widget.
type Kind string

const (
	Line  Kind = "line"
	Bar   Kind = "bar"
	Donut Kind = "donut"
)

// Chart is the payload handed to the widget. Line and Bar charts use Values;
// Donut charts use Shares.
type Chart struct {
	Kind   Kind      `json:"kind"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values,omitempty"`
	Shares []float64 `json:"shares,omitempty"`
}

// Validate checks that the series length matches the labels.
func (c Chart) Validate() error {
	var series []float64
	switch c.Kind {
	case Line, Bar:
		series = c.Values
	case Donut:
		series = c.Shares
	default:
		return fmt.Errorf("chart: unknown kind %q", c.Kind)
	}
	if len(series) != len(c.Labels) {
		return fmt.Errorf("chart: %d labels but %d values", len(c.Labels), len(series))
	}
	return nil
}

// Sink accepts chart payloads for a container.
type Sink interface {
	Draw(container string, c Chart) (template.HTML, error)
}

// Instance is a chart drawn into a container.
type Instance struct {
	ID        string
	Container string
	Chart     Chart
	disposed  bool
}

// Disposed reports whether the instance was replaced.
func (i *Instance) Disposed() bool { return i.disposed }

// Board is a Sink that tracks one live instance per container. Drawing into
// a container disposes the instance already there.
type Board struct {
	mu        sync.Mutex
	seq       int
	instances map[string]*Instance
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{instances: map[string]*Instance{}}
}

// Draw implements Sink.
func (b *Board) Draw(container string, c Chart) (template.HTML, error) {
	if strings.TrimSpace(container) == "" {
		return "", errors.New("chart: empty container")
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	cfg, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("chart: encode: %w", err)
	}

	b.mu.Lock()
	if prev, ok := b.instances[container]; ok {
		prev.disposed = true
	}
	b.seq++
	inst := &Instance{
		ID:        fmt.Sprintf("chart-%d", b.seq),
		Container: container,
		Chart:     c,
	}
	b.instances[container] = inst
	b.mu.Unlock()

	return template.HTML(fmt.Sprintf(`<canvas id="%s" class="chart chart-%s" data-chart-kind="%s" data-chart="%s"></canvas>`,
		inst.ID, c.Kind, c.Kind, template.HTMLEscapeString(string(cfg)))), nil
}

// Live returns the current instance for container, if any.
func (b *Board) Live(container string) (*Instance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inst, ok := b.instances[container]
	return inst, ok
}
