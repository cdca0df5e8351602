package page

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func static(frag string) RunFunc {
	return func(context.Context, *Load) (template.HTML, error) { return template.HTML(frag), nil }
}

func failing(msg string) RunFunc {
	return func(context.Context, *Load) (template.HTML, error) { return "", errors.New(msg) }
}

func TestFailingSectionDoesNotBlockSiblings(t *testing.T) {
	p := Page{
		Name:       "home",
		Containers: []string{"#isp-grid", "#facts-grid"},
		Sections: []Section{
			{Name: "isps", Container: "#isp-grid", Title: "ISP data", Run: failing("data/isps.json (404)")},
			{Name: "facts", Container: "#facts-grid", Title: "Facts", Run: static(`<div class="fact-card">ok</div>`)},
		},
	}
	res := NewOrchestrator(nil, nil).Render(context.Background(), p)

	require.Equal(t, template.HTML(`<div class="fact-card">ok</div>`), res.Doc.Fragment("#facts-grid"))

	d, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Doc.Fragment("#isp-grid"))))
	require.NoError(t, err)
	require.Equal(t, "ISP data", d.Find(".error-card h3").Text())
	require.Equal(t, "data/isps.json (404)", d.Find(".error-card p").Text())

	isps, _ := res.Outcome("isps")
	require.Equal(t, []State{Idle, Loading, Failed}, isps.States)
	facts, _ := res.Outcome("facts")
	require.Equal(t, []State{Idle, Loading, Rendered}, facts.States)
}

func TestSectionsRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	p := Page{
		Containers: []string{"#a", "#b"},
		Sections: []Section{
			{Name: "a", Container: "#a", Run: func(ctx context.Context, _ *Load) (template.HTML, error) {
				select {
				case <-release:
					return "a", nil
				case <-time.After(5 * time.Second):
					return "", errors.New("b never ran")
				}
			}},
			{Name: "b", Container: "#b", Run: func(context.Context, *Load) (template.HTML, error) {
				close(release)
				return "b", nil
			}},
		},
	}
	res := NewOrchestrator(nil, nil).Render(context.Background(), p)
	require.Equal(t, template.HTML("a"), res.Doc.Fragment("#a"))
	require.Equal(t, template.HTML("b"), res.Doc.Fragment("#b"))
}

func TestPanicIsIsolated(t *testing.T) {
	p := Page{
		Containers: []string{"#a", "#b"},
		Sections: []Section{
			{Name: "a", Container: "#a", Title: "Broken", Run: func(context.Context, *Load) (template.HTML, error) {
				var m map[string]int
				m["x"]++
				return "", nil
			}},
			{Name: "b", Container: "#b", Run: static("fine")},
		},
	}
	res := NewOrchestrator(nil, nil).Render(context.Background(), p)
	a, _ := res.Outcome("a")
	var pe *PanicError
	require.True(t, errors.As(a.Err, &pe))
	require.NotContains(t, string(res.Doc.Fragment("#a")), "goroutine", "stack stays out of the card")
	require.Equal(t, template.HTML("fine"), res.Doc.Fragment("#b"))
}

func TestAbsentContainerIsSilentNoOp(t *testing.T) {
	var ran atomic.Bool
	p := Page{
		Containers: []string{"#tl-masonry"},
		Sections: []Section{
			{Name: "snapshots", Container: "#home-snapshots", Run: func(context.Context, *Load) (template.HTML, error) {
				ran.Store(true)
				return "x", nil
			}},
		},
	}
	res := NewOrchestrator(nil, nil).Render(context.Background(), p)
	require.False(t, ran.Load())
	o, _ := res.Outcome("snapshots")
	require.Equal(t, Idle, o.Final())
	require.False(t, res.Doc.Mount("#home-snapshots", "x"))
}

func TestFallbackTextSwallowsFailure(t *testing.T) {
	p := Page{
		Containers: []string{".nav-ticker"},
		Sections: []Section{{
			Name: "ticker", Container: ".nav-ticker",
			Run:          failing("boom"),
			FallbackText: "≈58% of Egyptians are online (2025, demo)",
		}},
	}
	res := NewOrchestrator(nil, nil).Render(context.Background(), p)
	require.Equal(t, template.HTML("≈58% of Egyptians are online (2025, demo)"), res.Doc.Fragment(".nav-ticker"))
	o, _ := res.Outcome("ticker")
	require.Equal(t, Failed, o.Final())
}

func TestCustomCardFunc(t *testing.T) {
	card := func(_ context.Context, title, message string) template.HTML {
		return template.HTML("<x>" + template.HTMLEscapeString(title+"|"+message) + "</x>")
	}
	p := Page{
		Containers: []string{"#t"},
		Sections:   []Section{{Name: "t", Container: "#t", Title: "Timeline", Run: failing("bad")}},
	}
	res := NewOrchestrator(nil, card).Render(context.Background(), p)
	require.Equal(t, template.HTML("<x>Timeline|bad</x>"), res.Doc.Fragment("#t"))
}

func TestCacheRunsOnce(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	fn := func() (any, error) {
		calls.Add(1)
		return map[string]any{"snapshots": []any{}}, nil
	}

	p := Page{Containers: []string{"#a", "#b", "#c"}}
	for _, id := range p.Containers {
		p.Sections = append(p.Sections, Section{Name: id, Container: id, Run: func(context.Context, *Load) (template.HTML, error) {
			_, err := c.Do("data/home.json", fn)
			return "ok", err
		}})
	}
	NewOrchestrator(nil, nil).Render(context.Background(), p)
	require.Equal(t, int32(1), calls.Load())

	_, err := c.Do("data/growth.json", func() (any, error) { return nil, errors.New("down") })
	require.Error(t, err)
	_, err = c.Do("data/growth.json", func() (any, error) { return "late", nil })
	require.EqualError(t, err, "down", "errors are memoized too")
}

func TestCacheMemoizesPanicAsError(t *testing.T) {
	c := NewCache()
	_, err := c.Do("data/growth.json", func() (any, error) {
		var m map[string]int
		m["x"]++
		return nil, nil
	})
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "data/growth.json", pe.Key)

	v, err := c.Do("data/growth.json", func() (any, error) { return "late", nil })
	require.Nil(t, v)
	require.ErrorAs(t, err, &pe)
	require.Contains(t, err.Error(), "load data/growth.json panicked")
}

func TestDocumentPrependAndText(t *testing.T) {
	d := NewDocument("main.container", ".nav-ticker")
	require.True(t, d.Mount("main.container", "<p>body</p>"))
	require.True(t, d.Prepend("main.container", "<b>1</b>"))
	require.True(t, d.Prepend("main.container", "<b>2</b>"))
	require.Equal(t, template.HTML("<b>2</b><b>1</b><p>body</p>"), d.Fragment("main.container"))

	require.True(t, d.SetText(".nav-ticker", "<tag>"))
	require.Equal(t, template.HTML("&lt;tag&gt;"), d.Fragment(".nav-ticker"))
	require.False(t, d.Prepend("#missing", "x"))
}
