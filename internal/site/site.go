// Package site declares the pages of the site: which containers each page
// shell carries and which section fills each of them.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/egypt-online-web/internal/chart"
	"finitefield.org/egypt-online-web/internal/cms"
	"finitefield.org/egypt-online-web/internal/format"
	"finitefield.org/egypt-online-web/internal/i18n"
	"finitefield.org/egypt-online-web/internal/page"
	"finitefield.org/egypt-online-web/internal/records"
	"finitefield.org/egypt-online-web/internal/render"
	"finitefield.org/egypt-online-web/internal/resource"
	"finitefield.org/egypt-online-web/internal/schema"
)

// Resource paths relative to the data root.
const (
	HomeJSON        = "data/home.json"
	TimelineJSON    = "data/timeline.json"
	GrowthJSON      = "data/growth.json"
	ISPsJSON        = "data/isps.json"
	PenetrationJSON = "data/penetration.json"
	TodayNote       = "data/today.md"
)

// Container selectors declared by the page shells.
const (
	NavTicker        = ".nav-ticker"
	MainContainer    = "main.container"
	HomeSnapshots    = "#home-snapshots"
	MiniTimeline     = "#mini-tl"
	ISPGrid          = "#isp-grid"
	FactsGrid        = "#facts-grid"
	GrowthStats      = "#growth-stats"
	GrowthFacts      = "#growth-facts"
	ChartPenetration = "#chart-penetration"
	ChartTypes       = "#chart-types"
	ChartSpeeds      = "#chart-speeds"
	TimelineMasonry  = "#tl-masonry"
	TodayNotes       = "#today-notes"
)

// Timeline window and preview size.
const (
	TimelineFrom     = 2000
	TimelineTo       = 2025
	MiniTimelineSize = 6
)

// TickerFallback is shown in the header when the live figure cannot be read.
const TickerFallback = "≈58% of Egyptians are online (2025, demo)"

// ErrNoOffers is returned when isps.json holds an empty list.
var ErrNoOffers = errors.New("Empty isps.json")

// Page names.
const (
	Home     = "home"
	Growth   = "growth"
	Timeline = "timeline"
	Today    = "today"
)

// Site builds page definitions over a data loader and a renderer.
type Site struct {
	loader   *resource.Loader
	renderer *render.Renderer
	notes    *cms.Notes
	bundle   *i18n.Bundle
	logger   *zap.Logger
}

// Options carries the optional collaborators of a Site.
type Options struct {
	Notes  *cms.Notes
	Bundle *i18n.Bundle
	Logger *zap.Logger
}

// New builds a Site. Notes default to markdown files read through loader.
func New(loader *resource.Loader, renderer *render.Renderer, opts Options) *Site {
	s := &Site{
		loader:   loader,
		renderer: renderer,
		notes:    opts.Notes,
		bundle:   opts.Bundle,
		logger:   opts.Logger,
	}
	if s.notes == nil {
		s.notes = cms.NewNotes(loader)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Names lists the pages in navigation order.
func Names() []string { return []string{Home, Growth, Timeline, Today} }

// Page returns the definition of the named page for lang.
func (s *Site) Page(name, lang string) (page.Page, bool) {
	switch name {
	case Home:
		return s.HomePage(lang), true
	case Growth:
		return s.GrowthPage(lang), true
	case Timeline:
		return s.TimelinePage(lang), true
	case Today:
		return s.TodayPage(lang), true
	}
	return page.Page{}, false
}

// HomePage shows the headline numbers, a timeline preview, ISP offers and facts.
func (s *Site) HomePage(lang string) page.Page {
	return page.Page{
		Name:       Home,
		Containers: []string{NavTicker, MainContainer, HomeSnapshots, MiniTimeline, ISPGrid, FactsGrid},
		Sections: []page.Section{
			s.tickerSection(),
			{Name: "snapshots", Container: HomeSnapshots, Title: s.label(lang, "card.snapshots", "Snapshot data"), Run: s.snapshots},
			{Name: "mini-timeline", Container: MiniTimeline, Title: s.label(lang, "card.timeline_preview", "Timeline preview"), Run: s.miniTimeline},
			{Name: "isps", Container: ISPGrid, Title: s.label(lang, "card.isps", "ISP data"), Run: s.offers(lang)},
			{Name: "facts", Container: FactsGrid, Title: s.label(lang, "card.facts", "Facts"), Run: s.homeFacts},
		},
	}
}

// GrowthPage shows KPI tiles, highlights and the three growth charts.
// growth.json and penetration.json are fetched once per load and shared.
func (s *Site) GrowthPage(lang string) page.Page {
	return page.Page{
		Name: Growth,
		Containers: []string{NavTicker, MainContainer, GrowthStats, GrowthFacts,
			ChartPenetration, ChartTypes, ChartSpeeds},
		Sections: []page.Section{
			s.tickerSection(),
			{Name: "growth-stats", Container: GrowthStats, Title: s.label(lang, "card.growth_stats", "Growth stats"), Run: s.growthStats},
			{Name: "growth-facts", Container: GrowthFacts, Title: s.label(lang, "card.growth_facts", "Highlights"), Run: s.growthFacts},
			{Name: "chart-penetration", Container: ChartPenetration, Title: s.label(lang, "card.chart_penetration", "Penetration chart"), Run: s.penetrationChart},
			{Name: "chart-types", Container: ChartTypes, Title: s.label(lang, "card.chart_types", "Access types chart"), Run: s.typesChart},
			{Name: "chart-speeds", Container: ChartSpeeds, Title: s.label(lang, "card.chart_speeds", "Speeds chart"), Run: s.speedsChart},
		},
	}
}

// TimelinePage shows every milestone in the window.
func (s *Site) TimelinePage(lang string) page.Page {
	return page.Page{
		Name:       Timeline,
		Containers: []string{NavTicker, MainContainer, TimelineMasonry},
		Sections: []page.Section{
			s.tickerSection(),
			{Name: "timeline", Container: TimelineMasonry, Title: s.label(lang, "card.timeline", "Timeline"), Run: s.timeline},
		},
	}
}

// TodayPage shows the current note.
func (s *Site) TodayPage(lang string) page.Page {
	return page.Page{
		Name:       Today,
		Containers: []string{NavTicker, MainContainer, TodayNotes},
		Sections: []page.Section{
			s.tickerSection(),
			{Name: "today", Container: TodayNotes, Title: s.label(lang, "card.today", "Today"), Run: s.today(lang)},
		},
	}
}

type cardView struct {
	Title   string
	Message string
}

// Card renders the error card template, falling back to the literal card
// when the template cannot be rendered.
func (s *Site) Card(ctx context.Context, title, message string) template.HTML {
	frag, err := s.renderer.Render(ctx, "fragments/error.tmpl", cardView{Title: title, Message: message})
	if err != nil {
		s.logger.Warn("error card template failed", zap.Error(err))
		return page.LiteralCard(title, message)
	}
	return frag
}

func (s *Site) label(lang, key, def string) string {
	if s.bundle == nil {
		return def
	}
	if v := s.bundle.T(lang, key); v != key {
		return v
	}
	return def
}

// fetch loads p once per page load; every section asking for it shares the
// first result, failures included.
func (s *Site) fetch(ctx context.Context, load *page.Load, p string) (any, error) {
	return load.Cache.Do(p, func() (any, error) {
		return s.loader.Load(ctx, p)
	})
}

func (s *Site) tickerSection() page.Section {
	return page.Section{Name: "ticker", Container: NavTicker, Run: s.ticker, FallbackText: TickerFallback}
}

func (s *Site) ticker(ctx context.Context, load *page.Load) (template.HTML, error) {
	doc, err := s.fetch(ctx, load, PenetrationJSON)
	if err != nil {
		return "", err
	}
	points, err := records.Points(doc)
	if err != nil {
		return "", err
	}
	latest, ok := records.Latest(points)
	if !ok {
		return "", schema.Invalid("penetration.series", "no samples")
	}
	text := fmt.Sprintf("≈%s%% of Egyptians are online (%s, demo)", latest.Value, latest.Year)
	return template.HTML(template.HTMLEscapeString(text)), nil
}

func (s *Site) snapshots(ctx context.Context, load *page.Load) (template.HTML, error) {
	doc, err := s.fetch(ctx, load, HomeJSON)
	if err != nil {
		return "", err
	}
	recs, err := schema.Snapshot.Ensure(records.Member(doc, "snapshots"), "home.snapshots")
	if err != nil {
		return "", err
	}
	items, err := schema.Decode[records.Snapshot](recs, "home.snapshots")
	if err != nil {
		return "", err
	}
	return render.RenderEach(ctx, s.renderer, "fragments/snapshot.tmpl", items)
}

func (s *Site) homeFacts(ctx context.Context, load *page.Load) (template.HTML, error) {
	doc, err := s.fetch(ctx, load, HomeJSON)
	if err != nil {
		return "", err
	}
	return s.facts(ctx, records.Member(doc, "facts"), "home.facts")
}

func (s *Site) growthFacts(ctx context.Context, load *page.Load) (template.HTML, error) {
	doc, err := s.fetch(ctx, load, GrowthJSON)
	if err != nil {
		return "", err
	}
	return s.facts(ctx, records.Member(doc, "facts"), "growth.facts")
}

// facts renders an optional fact list. An absent list renders nothing.
func (s *Site) facts(ctx context.Context, list any, source string) (template.HTML, error) {
	if list == nil {
		return "", nil
	}
	recs, err := schema.Fact.Ensure(list, source)
	if err != nil {
		return "", err
	}
	items, err := schema.Decode[records.Fact](recs, source)
	if err != nil {
		return "", err
	}
	return render.RenderEach(ctx, s.renderer, "fragments/fact.tmpl", items)
}

func (s *Site) milestones(ctx context.Context, load *page.Load) ([]records.Milestone, error) {
	doc, err := s.fetch(ctx, load, TimelineJSON)
	if err != nil {
		return nil, err
	}
	recs, err := schema.Milestone.Ensure(doc, "timeline")
	if err != nil {
		return nil, err
	}
	all, err := schema.Decode[records.Milestone](recs, "timeline")
	if err != nil {
		return nil, err
	}
	return records.TimelineWindow(all, TimelineFrom, TimelineTo), nil
}

func (s *Site) miniTimeline(ctx context.Context, load *page.Load) (template.HTML, error) {
	items, err := s.milestones(ctx, load)
	if err != nil {
		return "", err
	}
	if len(items) > MiniTimelineSize {
		items = items[:MiniTimelineSize]
	}
	return render.RenderEach(ctx, s.renderer, "fragments/mini_milestone.tmpl", items)
}

func (s *Site) timeline(ctx context.Context, load *page.Load) (template.HTML, error) {
	items, err := s.milestones(ctx, load)
	if err != nil {
		return "", err
	}
	return render.RenderEach(ctx, s.renderer, "fragments/milestone.tmpl", items)
}

type offerView struct {
	Name  string
	Logo  string
	Avg   string
	Price string
}

func (s *Site) offers(lang string) page.RunFunc {
	return func(ctx context.Context, load *page.Load) (template.HTML, error) {
		offers, err := s.loadOffers(ctx, load)
		if err != nil {
			return "", err
		}
		views := make([]offerView, len(offers))
		for i, o := range offers {
			views[i] = offerView{
				Name:  o.Name.String(),
				Logo:  o.Logo.String(),
				Avg:   format.Quantity(o.Avg.String(), lang),
				Price: format.Quantity(o.Price.String(), lang),
			}
		}
		return render.RenderEach(ctx, s.renderer, "fragments/isp.tmpl", views)
	}
}

// loadOffers resolves ISP field synonyms before validating, so sources may
// name the same field differently.
func (s *Site) loadOffers(ctx context.Context, load *page.Load) ([]records.ISPOffer, error) {
	doc, err := s.fetch(ctx, load, ISPsJSON)
	if err != nil {
		return nil, err
	}
	raw, err := schema.EnsureShape(doc, nil, "isps")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoOffers
	}
	const source = "isps (normalized)"
	recs, err := schema.ISP.Ensure(schema.ISPSynonyms.NormalizeAll(raw), source)
	if err != nil {
		return nil, err
	}
	return schema.Decode[records.ISPOffer](recs, source)
}

// growthList validates the optional list stored under key in growth.json.
// ok is false when the list is absent.
func (s *Site) growthList(ctx context.Context, load *page.Load, key string, sc schema.Schema) (recs []map[string]any, ok bool, err error) {
	doc, err := s.fetch(ctx, load, GrowthJSON)
	if err != nil {
		return nil, false, err
	}
	list := records.Member(doc, key)
	if list == nil {
		return nil, false, nil
	}
	recs, err = sc.Ensure(list, "growth."+key)
	if err != nil {
		return nil, false, err
	}
	return recs, true, nil
}

func (s *Site) growthStats(ctx context.Context, load *page.Load) (template.HTML, error) {
	recs, ok, err := s.growthList(ctx, load, "stats", schema.Stat)
	if err != nil || !ok {
		return "", err
	}
	items, err := schema.Decode[records.GrowthStat](recs, "growth.stats")
	if err != nil {
		return "", err
	}
	return render.RenderEach(ctx, s.renderer, "fragments/stat.tmpl", items)
}

func (s *Site) penetrationChart(ctx context.Context, load *page.Load) (template.HTML, error) {
	doc, err := s.fetch(ctx, load, PenetrationJSON)
	if err != nil {
		return "", err
	}
	points, err := records.Points(doc)
	if err != nil {
		return "", err
	}
	c := chart.Chart{Kind: chart.Line, Labels: make([]string, len(points)), Values: make([]float64, len(points))}
	for i, p := range points {
		c.Labels[i] = p.Year.String()
		c.Values[i] = float64(p.Value)
	}
	return load.Charts.Draw(ChartPenetration, c)
}

func (s *Site) typesChart(ctx context.Context, load *page.Load) (template.HTML, error) {
	recs, ok, err := s.growthList(ctx, load, "types", schema.ShareType)
	if err != nil || !ok {
		return "", err
	}
	items, err := schema.Decode[records.GrowthType](recs, "growth.types")
	if err != nil {
		return "", err
	}
	c := chart.Chart{Kind: chart.Donut, Labels: make([]string, len(items)), Shares: make([]float64, len(items))}
	for i, t := range items {
		c.Labels[i] = t.Name.String()
		c.Shares[i] = float64(t.Share)
	}
	return load.Charts.Draw(ChartTypes, c)
}

func (s *Site) speedsChart(ctx context.Context, load *page.Load) (template.HTML, error) {
	recs, ok, err := s.growthList(ctx, load, "speeds", schema.Speed)
	if err != nil || !ok {
		return "", err
	}
	items, err := schema.Decode[records.GrowthSpeed](recs, "growth.speeds")
	if err != nil {
		return "", err
	}
	c := chart.Chart{Kind: chart.Bar, Labels: make([]string, len(items)), Values: make([]float64, len(items))}
	for i, sp := range items {
		c.Labels[i] = sp.Name.String()
		c.Values[i] = float64(sp.Mbps)
	}
	return load.Charts.Draw(ChartSpeeds, c)
}

type noteView struct {
	Title   string
	Summary string
	Updated string
	Body    template.HTML
}

func (s *Site) today(lang string) page.RunFunc {
	return func(ctx context.Context, load *page.Load) (template.HTML, error) {
		note, err := s.notes.Get(ctx, TodayNote)
		if err != nil {
			return "", err
		}
		return s.renderer.Render(ctx, "fragments/note.tmpl", noteView{
			Title:   note.Title,
			Summary: note.Summary,
			Updated: format.FmtDate(note.UpdatedAt, lang),
			Body:    note.Body,
		})
	}
}

// Title returns the document title for a page.
func (s *Site) Title(name, lang string) string {
	def := "Egypt Online"
	if name != Home {
		def = strings.ToUpper(name[:1]) + name[1:] + " · Egypt Online"
	}
	return s.label(lang, "title."+name, def)
}
