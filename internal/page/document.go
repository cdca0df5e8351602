package page

import (
	"html/template"
	"sync"
)

// Document is the server-side stand-in for the page DOM: one slot per
// container selector declared by the page shell.
type Document struct {
	mu       sync.RWMutex
	slots    map[string]template.HTML
	prepends map[string][]template.HTML
}

// NewDocument declares the containers present on the page.
func NewDocument(containers ...string) *Document {
	d := &Document{
		slots:    make(map[string]template.HTML, len(containers)),
		prepends: map[string][]template.HTML{},
	}
	for _, c := range containers {
		d.slots[c] = ""
	}
	return d
}

// Has reports whether the container is declared.
func (d *Document) Has(container string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.slots[container]
	return ok
}

// Mount replaces the container's content. Mounting into an undeclared
// container does nothing and reports false.
func (d *Document) Mount(container string, frag template.HTML) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.slots[container]; !ok {
		return false
	}
	d.slots[container] = frag
	return true
}

// SetText mounts plain text, escaped.
func (d *Document) SetText(container, text string) bool {
	return d.Mount(container, template.HTML(template.HTMLEscapeString(text)))
}

// Prepend inserts frag before the container's content. Later calls land
// before earlier ones.
func (d *Document) Prepend(container string, frag template.HTML) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.slots[container]; !ok {
		return false
	}
	d.prepends[container] = append([]template.HTML{frag}, d.prepends[container]...)
	return true
}

// Fragment returns the container's markup, prepended fragments first.
func (d *Document) Fragment(container string) template.HTML {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out template.HTML
	for _, p := range d.prepends[container] {
		out += p
	}
	return out + d.slots[container]
}
