package render

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

type ispView struct {
	Name  string
	Logo  string
	Avg   string
	Price string
}

const ispTmpl = `<div class="isp-card">
  <div class="isp-logo">{{if .Logo}}<img src="{{.Logo}}" alt="">{{end}}</div>
  <h4 class="isp-name">{{.Name}}</h4>
  <p class="isp-speed">Avg speed: {{.Avg}}</p>
  <p class="isp-price">Typical price: {{.Price}}</p>
</div>`

func doc(t *testing.T, frag template.HTML) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(string(frag)))
	require.NoError(t, err)
	return d
}

func TestRenderRegisteredTemplate(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"fragments/isp.tmpl": {Data: []byte(ispTmpl)},
	}, Options{})
	require.NoError(t, err)

	frag, err := r.Render(context.Background(), "fragments/isp.tmpl", ispView{Name: "WE", Avg: "10", Price: "250"})
	require.NoError(t, err)
	d := doc(t, frag)
	require.Equal(t, "WE", d.Find(".isp-name").Text())
	require.Equal(t, 0, d.Find("img").Length(), "logo is optional")
}

type sourceOnly map[string]string

func (s sourceOnly) Open(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", errors.New("missing " + name)
}

func TestRenderFallsBackWhenRegisteredTemplateIsUnknown(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"layout.tmpl": {Data: []byte(`{{define "base"}}<html></html>{{end}}`)},
	}, Options{Fallback: sourceOnly{"fragments/isp.tmpl": ispTmpl}})
	require.NoError(t, err)

	view := ispView{Name: "Orange", Logo: "assets/img/isp/orange.png", Avg: "20", Price: "350"}
	frag, err := r.Render(context.Background(), "fragments/isp.tmpl", view)
	require.NoError(t, err)
	d := doc(t, frag)
	require.Equal(t, "Orange", d.Find(".isp-name").Text())
	require.Equal(t, "Avg speed: 20", d.Find(".isp-speed").Text())
	src, _ := d.Find("img").Attr("src")
	require.Equal(t, "assets/img/isp/orange.png", src)
}

func TestRenderFallsBackWhenRegisteredTemplateHasNoOutput(t *testing.T) {
	t.Parallel()

	// The registered copy is a stale stub; the source copy is complete.
	r, err := Configure(fstest.MapFS{
		"fragments/isp.tmpl": {Data: []byte("{{/* todo */}}\n  <!-- stub -->\n")},
	}, Options{Fallback: sourceOnly{"fragments/isp.tmpl": ispTmpl}})
	require.NoError(t, err)

	view := ispView{Name: "Vodafone", Avg: "15", Price: "360"}
	fallback, err := r.Render(context.Background(), "fragments/isp.tmpl", view)
	require.NoError(t, err)

	direct, err := Configure(fstest.MapFS{"fragments/isp.tmpl": {Data: []byte(ispTmpl)}}, Options{})
	require.NoError(t, err)
	primary, err := direct.Render(context.Background(), "fragments/isp.tmpl", view)
	require.NoError(t, err)

	require.Equal(t, primary, fallback, "both paths render the same fields")
}

func TestRenderBothPathsFailing(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"layout.tmpl": {Data: []byte(`<main></main>`)},
	}, Options{})
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "fragments/missing.tmpl", nil)
	require.ErrorIs(t, err, ErrTemplate)
	var te *TemplateError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "fragments/missing.tmpl", te.Name)
	require.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestRenderExecutionErrorDoesNotFallBack(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"fragments/bad.tmpl": {Data: []byte(`<p>{{.Missing.Field}}</p>`)},
	}, Options{Fallback: sourceOnly{"fragments/bad.tmpl": `<p>ok</p>`}})
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "fragments/bad.tmpl", struct{}{})
	require.ErrorIs(t, err, ErrTemplate)
	require.NotErrorIs(t, err, ErrUnknownTemplate)
}

func TestRenderStripsScripts(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"fragments/raw.tmpl": {Data: []byte(`<div class="fact-card" onclick="x()">{{.}}<script>alert(1)</script></div>`)},
	}, Options{})
	require.NoError(t, err)

	frag, err := r.Render(context.Background(), "fragments/raw.tmpl", "<b>hi</b>")
	require.NoError(t, err)
	out := string(frag)
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "onclick")
	require.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;")
	require.Contains(t, out, `class="fact-card"`)
}

func TestRenderEachConcatenates(t *testing.T) {
	t.Parallel()

	r, err := Configure(fstest.MapFS{
		"fragments/li.tmpl": {Data: []byte(`<li>{{.}}</li>`)},
	}, Options{})
	require.NoError(t, err)

	out, err := RenderEach(context.Background(), r, "fragments/li.tmpl", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, template.HTML("<li>a</li><li>b</li>"), out)

	out, err = RenderEach(context.Background(), r, "fragments/li.tmpl", []string(nil))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestHasOutput(t *testing.T) {
	t.Parallel()

	require.False(t, hasOutput(""))
	require.False(t, hasOutput("  \n <!-- c --> "))
	require.True(t, hasOutput("text"))
	require.True(t, hasOutput("<br/>"))
}

func TestConfigureWithoutTemplates(t *testing.T) {
	t.Parallel()

	_, err := Configure(fstest.MapFS{}, Options{})
	require.Error(t, err)
}
