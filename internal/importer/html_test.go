package importer_test

import (
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

const chromeExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000" PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1700000000">Development</H3>
        <DL><p>
            <DT><A HREF="https://go.dev" ADD_DATE="1234567890">Go</A>
            <DT><H3>Nested</H3>
            <DL><p>
                <DT><A HREF="https://pkg.go.dev">Packages</A>
            </DL><p>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><H3>Reading</H3>
    <DL><p>
        <DT><A HREF="https://lobste.rs">Lobsters</A>
    </DL><p>
    <DT><A HREF="https://example.com"></A>
</DL><p>`

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(parsed.Bar, 0))
	assert.Assert(t, is.Len(parsed.Other, 1))

	b := parsed.Other[0]
	assert.Equal(t, b.Title, "Example Site")
	assert.Equal(t, *b.URL, "https://example.com")
	assert.Equal(t, b.ID, "", "ids are assigned by the store")
	assert.Assert(t, b.DateAdded.Equal(time.Unix(1234567890, 0)))
}

func TestParseHTML_ToolbarAndNesting(t *testing.T) {
	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(chromeExport))
	assert.NilError(t, err)

	// Toolbar folder contents go to the bar, the folder itself is dropped
	assert.Assert(t, is.Len(parsed.Bar, 2))
	dev := parsed.Bar[0]
	assert.Equal(t, dev.Title, "Development")
	assert.Equal(t, dev.Kind(), model.KindFolder)
	assert.Assert(t, is.Len(dev.Children, 2))
	assert.Equal(t, dev.Children[0].Title, "Go")
	assert.Equal(t, dev.Children[1].Title, "Nested")
	assert.Equal(t, dev.Children[1].Children[0].Title, "Packages")
	assert.Equal(t, parsed.Bar[1].Title, "GitHub")

	assert.Assert(t, is.Len(parsed.Other, 2))
	assert.Equal(t, parsed.Other[0].Title, "Reading")
	assert.Equal(t, parsed.Other[0].Children[0].Title, "Lobsters")
	// Empty anchor text falls back to the URL
	assert.Equal(t, parsed.Other[1].Title, "https://example.com")

	bookmarks, folders := parsed.Counts()
	assert.Equal(t, bookmarks, 5)
	assert.Equal(t, folders, 3)
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	bookmarks, folders := parsed.Counts()
	assert.Equal(t, bookmarks, 0)
	assert.Equal(t, folders, 0)
}

func TestParseHTML_EmptyFolder(t *testing.T) {
	html := `<DL><p>
    <DT><H3>Empty</H3>
    <DL><p>
    </DL><p>
</DL><p>`

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(parsed.Other, 1))
	assert.Equal(t, parsed.Other[0].Kind(), model.KindFolder)
	assert.Assert(t, parsed.Other[0].Children != nil)
	assert.Assert(t, is.Len(parsed.Other[0].Children, 0))
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(parsed.Other, 1))
	assert.Equal(t, parsed.Other[0].Title, "Valid")
}

func TestParseHTML_BadTimestamp(t *testing.T) {
	html := `<DL><p><DT><A HREF="https://x.example" ADD_DATE="yesterday">X</A></DL><p>`

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(parsed.Other, 1))
	assert.Assert(t, parsed.Other[0].DateAdded == nil)
}

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImport_IntoSQLite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stats, err := importer.Import(ctx, s, strings.NewReader(chromeExport))
	assert.NilError(t, err)
	assert.Equal(t, stats, importer.Stats{Added: 5, Folders: 3})

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)

	folders := model.BuildFolders(root, time.Now())
	var titles []string
	for _, f := range folders {
		titles = append(titles, f.Title)
	}
	assert.DeepEqual(t, titles, []string{"Development", "Reading", model.UncategorizedTitle})

	uncategorized := folders[2]
	assert.Assert(t, is.Len(uncategorized.Bookmarks, 2))
	assert.Equal(t, uncategorized.Bookmarks[0].Title, "GitHub")
}

func TestImport_SkipsDuplicates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := importer.Import(ctx, s, strings.NewReader(chromeExport))
	assert.NilError(t, err)

	stats, err := importer.Import(ctx, s, strings.NewReader(chromeExport))
	assert.NilError(t, err)
	assert.Equal(t, stats.Added, 0)
	assert.Equal(t, stats.Skipped, 5)
	assert.Equal(t, stats.Folders, 0, "folders emptied by dedupe are not recreated")
}

func TestImport_DuplicatesInsideFile(t *testing.T) {
	s := newStore(t)
	html := `<DL><p>
    <DT><A HREF="https://same.example">One</A>
    <DT><A HREF="https://same.example">Two</A>
</DL><p>`

	stats, err := importer.Import(context.Background(), s, strings.NewReader(html))
	assert.NilError(t, err)
	assert.Equal(t, stats.Added, 1)
	assert.Equal(t, stats.Skipped, 1)
}
