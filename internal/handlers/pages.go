package handlers

import (
	"html/template"
	"strings"

	"finitefield.org/egypt-online-web/internal/i18n"
	"finitefield.org/egypt-online-web/internal/nav"
	"finitefield.org/egypt-online-web/internal/page"
	"finitefield.org/egypt-online-web/internal/seo"
)

// PageData is the view model executed by the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Dir       string
	Page      string
	SEO       seo.Meta
	JSONLD    []template.JS
	Analytics Analytics

	// Common layout fields
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	doc    *page.Document
	bundle *i18n.Bundle
}

// Slot returns the markup mounted into a container of the page document.
func (d PageData) Slot(container string) template.HTML {
	if d.doc == nil {
		return ""
	}
	return d.doc.Fragment(container)
}

// T translates a UI label key.
func (d PageData) T(key string) string {
	if d.bundle == nil {
		return key
	}
	return d.bundle.T(d.Lang, key)
}

// PageInput carries what BuildPageData needs from a finished page load.
type PageInput struct {
	Page        string
	Title       string
	Description string
	Path        string
	Lang        string
	BaseURL     string
	Doc         *page.Document
	Bundle      *i18n.Bundle
	Analytics   Analytics
}

// BuildPageData assembles the layout view model for a rendered page.
func BuildPageData(in PageInput) PageData {
	d := PageData{
		Title:       in.Title,
		Lang:        in.Lang,
		Dir:         direction(in.Lang),
		Page:        in.Page,
		Analytics:   in.Analytics,
		Path:        in.Path,
		Nav:         nav.Build(in.Path),
		Breadcrumbs: nav.Breadcrumbs(in.Path),
		doc:         in.Doc,
		bundle:      in.Bundle,
	}
	base := strings.TrimRight(in.BaseURL, "/")
	d.SEO = seo.Meta{
		Title:       in.Title,
		Description: in.Description,
		OG: seo.OpenGraph{
			Title:       in.Title,
			Description: in.Description,
			Type:        "website",
		},
		Twitter: seo.Twitter{Card: "summary"},
	}
	if base != "" {
		d.SEO.Canonical = base + in.Path
		d.SEO.OG.URL = d.SEO.Canonical
	}
	siteName := d.T("site.name")
	d.JSONLD = append(d.JSONLD, template.JS(seo.JSON(seo.WebSite(siteName, base+"/"))))
	if len(d.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(d.Breadcrumbs))
		for _, c := range d.Breadcrumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = d.T(c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: base + c.Href})
		}
		d.JSONLD = append(d.JSONLD, template.JS(seo.JSON(seo.BreadcrumbList(items))))
	}
	return d
}

func direction(lang string) string {
	switch strings.ToLower(lang) {
	case "ar", "fa", "he", "ur":
		return "rtl"
	}
	return "ltr"
}
