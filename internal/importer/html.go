package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/model"
)

// Parsed is a Netscape bookmark file split across the two root containers.
// Bar receives the contents of the folder marked PERSONAL_TOOLBAR_FOLDER;
// everything else lands in Other.
type Parsed struct {
	Bar   []model.Node
	Other []model.Node
}

// Counts returns the number of bookmarks and folders in p.
func (p Parsed) Counts() (bookmarks, folders int) {
	var walk func([]model.Node)
	walk = func(nodes []model.Node) {
		for _, n := range nodes {
			if n.Kind() == model.KindBookmark {
				bookmarks++
				continue
			}
			folders++
			walk(n.Children)
		}
	}
	walk(p.Bar)
	walk(p.Other)
	return bookmarks, folders
}

// ParseHTMLBookmarks parses Netscape bookmark HTML into node trees. Nodes
// get no ids; the destination store assigns them.
func ParseHTMLBookmarks(r io.Reader) (Parsed, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Parsed{}, err
	}

	var result Parsed

	// Each stack entry collects the children of one open <DL>.
	// The bottom entry is the top level of the file.
	type frame struct {
		nodes   []model.Node
		toolbar bool
	}
	stack := []*frame{{}}
	var pending *model.Node // folder waiting for its <DL>
	var pendingToolbar bool

	appendNode := func(n model.Node) {
		top := stack[len(stack)-1]
		top.nodes = append(top.nodes, n)
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				folder := model.Node{
					Title:     name,
					DateAdded: parseUnix(getAttr(n, "add_date")),
					Children:  []model.Node{},
				}
				if pending != nil {
					// Previous folder had no <DL>: keep it empty
					appendNode(*pending)
				}
				pending = &folder
				pendingToolbar = strings.EqualFold(getAttr(n, "personal_toolbar_folder"), "true")
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				if pending != nil {
					appendNode(*pending)
					pending = nil
				}
				appendNode(model.Node{
					Title:     title,
					URL:       model.StringPtr(href),
					DateAdded: parseUnix(getAttr(n, "add_date")),
				})
				return

			case "dl":
				folder := pending
				toolbar := pendingToolbar
				pending = nil
				pendingToolbar = false
				if folder != nil {
					stack = append(stack, &frame{toolbar: toolbar})
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pending != nil {
					appendNode(*pending)
					pending = nil
				}

				if folder != nil {
					done := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					switch {
					case done.toolbar && len(stack) == 1:
						result.Bar = append(result.Bar, done.nodes...)
					default:
						if done.nodes != nil {
							folder.Children = done.nodes
						}
						appendNode(*folder)
					}
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	if pending != nil {
		appendNode(*pending)
	}
	result.Other = append(result.Other, stack[0].nodes...)
	return result, nil
}

// Destination is a bookmark store that can take new nodes.
type Destination interface {
	GetTree(ctx context.Context) (*model.Node, error)
	Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error)
}

// Stats reports the outcome of an import.
type Stats struct {
	Added   int
	Folders int
	Skipped int // bookmarks whose URL already existed
}

// Import parses r and appends it to dst, skipping bookmarks whose URL is
// already present anywhere in the tree.
func Import(ctx context.Context, dst Destination, r io.Reader) (Stats, error) {
	parsed, err := ParseHTMLBookmarks(r)
	if err != nil {
		return Stats{}, fmt.Errorf("parse html: %w", err)
	}

	root, err := dst.GetTree(ctx)
	if err != nil {
		return Stats{}, err
	}
	seen := make(map[string]bool)
	collectURLs(root, seen)

	var stats Stats
	parsed.Bar = dedupe(parsed.Bar, seen, &stats.Skipped)
	parsed.Other = dedupe(parsed.Other, seen, &stats.Skipped)
	_, stats.Folders = parsed.Counts()

	for _, target := range []struct {
		parentID string
		nodes    []model.Node
	}{
		{model.RootBookmarkBarID, parsed.Bar},
		{model.RootOtherBookmarksID, parsed.Other},
	} {
		if len(target.nodes) == 0 {
			continue
		}
		added, err := dst.Insert(ctx, target.parentID, target.nodes)
		if err != nil {
			return stats, fmt.Errorf("insert into %s: %w", target.parentID, err)
		}
		stats.Added += added
	}

	logging.L().Info("bookmarks imported",
		zap.Int("added", stats.Added),
		zap.Int("folders", stats.Folders),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func collectURLs(n *model.Node, seen map[string]bool) {
	if n == nil {
		return
	}
	if n.URL != nil {
		seen[*n.URL] = true
	}
	for i := range n.Children {
		collectURLs(&n.Children[i], seen)
	}
}

// dedupe drops bookmarks already in seen and records the new ones, so
// duplicates inside the file are skipped too. A folder emptied by dedupe is
// dropped; a folder that was empty in the file is kept.
func dedupe(nodes []model.Node, seen map[string]bool, skipped *int) []model.Node {
	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.URL != nil {
			if seen[*n.URL] {
				*skipped++
				continue
			}
			seen[*n.URL] = true
			out = append(out, n)
			continue
		}
		if len(n.Children) > 0 {
			n.Children = dedupe(n.Children, seen, skipped)
			if len(n.Children) == 0 {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func parseUnix(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
