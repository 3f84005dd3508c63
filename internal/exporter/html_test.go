package exporter

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmtab/internal/importer"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/storage"
)

func testTree() *model.Node {
	added := time.Unix(1700000000, 0)
	return &model.Node{ID: "0", Children: []model.Node{
		{ID: "1", Title: "Bookmarks bar", Children: []model.Node{
			{ID: "f1", Title: "Development", DateAdded: &added, Children: []model.Node{
				{ID: "b1", Title: "GitHub", URL: model.StringPtr("https://github.com"), DateAdded: &added},
			}},
		}},
		{ID: "2", Title: "Other bookmarks", Children: []model.Node{
			{ID: "b2", Title: "Q&A <site>", URL: model.StringPtr("https://example.com/?a=1&b=2")},
		}},
		{ID: "3", Title: "Mobile bookmarks", Children: []model.Node{}},
	}}
}

func TestExportHTML_EmptyTree(t *testing.T) {
	html := ExportHTML(nil)

	// Should have basic structure even when empty
	for _, want := range []string{"<!DOCTYPE NETSCAPE-Bookmark-file-1>", "<TITLE>Bookmarks</TITLE>", "<H1>Bookmarks</H1>", "</DL><p>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestExportHTML_Structure(t *testing.T) {
	html := ExportHTML(testTree())

	assert.Assert(t, is.Contains(html, `<DT><H3 PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>`))
	assert.Assert(t, is.Contains(html, `<DT><H3 ADD_DATE="1700000000">Development</H3>`))
	assert.Assert(t, is.Contains(html, `        <DT><A HREF="https://github.com" ADD_DATE="1700000000">GitHub</A>`))
	// Other bookmarks are written at the top level
	assert.Assert(t, is.Contains(html, "\n    <DT><A HREF=\"https://example.com/?a=1&amp;b=2\">Q&amp;A &lt;site&gt;</A>"))
	assert.Assert(t, !strings.Contains(html, "Other bookmarks"))
	// Empty extra containers are skipped
	assert.Assert(t, !strings.Contains(html, "Mobile bookmarks"))
}

func TestWriteHTML_Stats(t *testing.T) {
	var buf bytes.Buffer

	stats, err := WriteHTML(&buf, testTree())

	assert.NilError(t, err)
	assert.Equal(t, stats, Stats{Bookmarks: 2, Folders: 2})
	assert.Equal(t, buf.String(), ExportHTML(testTree()))
}

func TestExportHTML_RoundTrip(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = importer.Import(ctx, s, strings.NewReader(ExportHTML(testTree())))
	assert.NilError(t, err)

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)

	bar := root.Child(model.RootBookmarkBarID)
	assert.Assert(t, is.Len(bar.Children, 1))
	assert.Equal(t, bar.Children[0].Title, "Development")
	assert.Equal(t, bar.Children[0].Children[0].Title, "GitHub")

	other := root.Child(model.RootOtherBookmarksID)
	assert.Assert(t, is.Len(other.Children, 1))
	assert.Equal(t, other.Children[0].Title, "Q&A <site>")
	assert.Equal(t, *other.Children[0].URL, "https://example.com/?a=1&b=2")
}

func TestDefaultExportPath(t *testing.T) {
	path, err := DefaultExportPath(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))

	assert.NilError(t, err)
	assert.Equal(t, filepath.Base(path), "bookmarks-export-2025-03-09.html")
	assert.Equal(t, filepath.Base(filepath.Dir(path)), "Downloads")
}
