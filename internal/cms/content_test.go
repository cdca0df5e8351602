package cms

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/egypt-online-web/internal/resource"
)

func TestNotesRendersMarkdownWithFrontMatter(t *testing.T) {
	t.Parallel()

	loader := resource.NewFSLoader(fstest.MapFS{
		"data/today.md": {Data: []byte("---\ntitle: Online today\nupdated_at: 2025-03-01\n---\n\nMost people connect **via mobile**.\n\n<script>alert(1)</script>\n")},
	})
	note, err := NewNotes(loader).Get(context.Background(), "data/today.md")
	require.NoError(t, err)
	require.Equal(t, "Online today", note.Title)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), note.UpdatedAt)

	d, err := goquery.NewDocumentFromReader(strings.NewReader(string(note.Body)))
	require.NoError(t, err)
	require.Equal(t, "via mobile", d.Find("strong").Text())
	require.Equal(t, 0, d.Find("script").Length())
}

func TestNotesTitleFallsBackToSlug(t *testing.T) {
	t.Parallel()

	loader := resource.NewFSLoader(fstest.MapFS{
		"data/today-notes.md": {Data: []byte("plain body")},
	})
	note, err := NewNotes(loader).Get(context.Background(), "data/today-notes.md")
	require.NoError(t, err)
	require.Equal(t, "Today Notes", note.Title)
	require.True(t, note.UpdatedAt.IsZero())
}

func TestNotesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewNotes(resource.NewFSLoader(fstest.MapFS{})).Get(context.Background(), "data/today.md")
	require.ErrorIs(t, err, resource.ErrFetch)
}

func TestNotesBadFrontMatter(t *testing.T) {
	t.Parallel()

	loader := resource.NewFSLoader(fstest.MapFS{
		"data/today.md": {Data: []byte("---\ntitle: [unclosed\n---\nbody")},
	})
	_, err := NewNotes(loader).Get(context.Background(), "data/today.md")
	require.Error(t, err)
	require.Contains(t, err.Error(), "front matter")
}
