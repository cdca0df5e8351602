// Package nav builds the header navigation and breadcrumbs.
package nav

import (
	"path"
	"strings"
)

// Item is a top-level navigation entry.
type Item struct {
	Page     string // page name, e.g. "growth"
	Path     string // e.g. "/growth"
	LabelKey string // i18n key, e.g. "nav.growth"
}

// RenderedItem is a view model for templates. Active items carry
// aria-current="page" in the shell.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the header navigation, in display order.
var Main = []Item{
	{Page: "home", Path: "/", LabelKey: "nav.home"},
	{Page: "growth", Path: "/growth", LabelKey: "nav.growth"},
	{Page: "timeline", Path: "/timeline", LabelKey: "nav.timeline"},
	{Page: "today", Path: "/today", LabelKey: "nav.today"},
}

// PathFor returns the route of a page, or "" if the page is not in Main.
func PathFor(page string) string {
	for _, it := range Main {
		if it.Page == page {
			return it.Path
		}
	}
	return ""
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs starts at Home and adds the top-level page, if any.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}
	clean := path.Clean(currentPath)
	top := strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)[0]
	if top == "" {
		return crumbs
	}
	c := Crumb{Href: "/" + top, Label: titleFromSegment(top), Active: true}
	for _, it := range Main {
		if it.Path == c.Href {
			c.LabelKey = it.LabelKey
			break
		}
	}
	return append(crumbs, c)
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
