// Package cms reads the markdown notes shown on the "today" page.
package cms

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"finitefield.org/egypt-online-web/internal/resource"
)

// Note is a markdown document with optional YAML front matter.
type Note struct {
	Slug      string
	Title     string
	Summary   string
	UpdatedAt time.Time
	Body      template.HTML
}

type noteFrontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

// Notes loads notes through a resource loader, so they live next to the JSON data.
type Notes struct {
	loader *resource.Loader
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewNotes builds a note reader.
func NewNotes(loader *resource.Loader) *Notes {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "code", "pre")
	policy.RequireNoFollowOnLinks(true)
	return &Notes{
		loader: loader,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Get fetches and renders the note at path.
func (n *Notes) Get(ctx context.Context, path string) (Note, error) {
	raw, err := n.loader.Raw(ctx, path)
	if err != nil {
		return Note{}, err
	}
	fm, body := splitFrontMatter(string(raw))
	front := noteFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Note{}, fmt.Errorf("cms: parse front matter %s: %w", path, err)
		}
	}
	var buf bytes.Buffer
	if err := n.md.Convert([]byte(body), &buf); err != nil {
		return Note{}, fmt.Errorf("cms: render %s: %w", path, err)
	}
	slug := slugFromPath(path)
	note := Note{
		Slug:      slug,
		Title:     firstNonEmpty(strings.TrimSpace(front.Title), prettifySlug(slug)),
		Summary:   strings.TrimSpace(front.Summary),
		UpdatedAt: parseContentDate(front.UpdatedAt),
		Body:      template.HTML(n.policy.SanitizeBytes(buf.Bytes())),
	}
	return note, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\uFEFF")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func slugFromPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return strings.TrimSuffix(p, ".md")
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
