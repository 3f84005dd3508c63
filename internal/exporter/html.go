package exporter

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtab/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath(now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", now.Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// Stats counts what an export wrote.
type Stats struct {
	Bookmarks int
	Folders   int
}

// ExportHTML renders the host tree as Netscape bookmark HTML.
//
// The bookmark bar becomes a PERSONAL_TOOLBAR_FOLDER, the other-bookmarks
// container is written at the top level, and any further containers are
// written as plain folders.
func ExportHTML(root *model.Node) string {
	var b strings.Builder
	_, _ = WriteHTML(&b, root)
	return b.String()
}

// WriteHTML writes the export to w.
func WriteHTML(w io.Writer, root *model.Node) (Stats, error) {
	e := &encoder{}

	e.line(0, "<!DOCTYPE NETSCAPE-Bookmark-file-1>")
	e.line(0, `<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">`)
	e.line(0, "<TITLE>Bookmarks</TITLE>")
	e.line(0, "<H1>Bookmarks</H1>")
	e.line(0, "<DL><p>")

	if root != nil {
		for _, container := range root.Children {
			switch container.ID {
			case model.RootBookmarkBarID:
				e.folder(container, 1, ` PERSONAL_TOOLBAR_FOLDER="true"`)
			case model.RootOtherBookmarksID:
				e.items(container.Children, 1)
			default:
				if len(container.Children) > 0 {
					e.folder(container, 1, "")
				}
			}
		}
	}

	e.line(0, "</DL><p>")

	if _, err := io.WriteString(w, e.b.String()); err != nil {
		return Stats{}, err
	}
	return e.stats, nil
}

type encoder struct {
	b     strings.Builder
	stats Stats
}

func (e *encoder) line(indent int, s string) {
	e.b.WriteString(strings.Repeat("    ", indent))
	e.b.WriteString(s)
	e.b.WriteString("\n")
}

func (e *encoder) items(nodes []model.Node, indent int) {
	for _, n := range nodes {
		if n.Kind() == model.KindBookmark {
			e.bookmark(n, indent)
			continue
		}
		e.folder(n, indent, "")
	}
}

func (e *encoder) folder(n model.Node, indent int, extra string) {
	e.stats.Folders++
	attrs := dateAttr("ADD_DATE", n.DateAdded) + dateAttr("LAST_MODIFIED", n.DateGroupModified) + extra
	e.line(indent, fmt.Sprintf("<DT><H3%s>%s</H3>", attrs, html.EscapeString(n.Title)))
	e.line(indent, "<DL><p>")
	e.items(n.Children, indent+1)
	e.line(indent, "</DL><p>")
}

func (e *encoder) bookmark(n model.Node, indent int) {
	e.stats.Bookmarks++
	e.line(indent, fmt.Sprintf(`<DT><A HREF="%s"%s>%s</A>`,
		html.EscapeString(*n.URL),
		dateAttr("ADD_DATE", n.DateAdded),
		html.EscapeString(n.Title),
	))
}

func dateAttr(name string, t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmt.Sprintf(` %s="%d"`, name, t.Unix())
}
