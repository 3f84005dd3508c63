package model

import "time"

// Well-known ids in the host bookmark tree.
const (
	RootBookmarkBarID    = "1"
	RootOtherBookmarksID = "2"

	// UncategorizedFolderID addresses the in-memory folder that collects
	// bookmarks sitting directly under the root containers.
	UncategorizedFolderID = "uncategorized"
	UncategorizedTitle    = "Uncategorized"
	VirtualParentID       = "virtual"
)

// Node is one entry of the host's bookmark tree as delivered by the host.
type Node struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	URL               *string    `json:"url,omitempty"`      // nil = folder
	Children          []Node     `json:"children,omitempty"` // nil = absent, empty = no children
	ParentID          string     `json:"parentId,omitempty"`
	DateAdded         *time.Time `json:"dateAdded,omitempty"`
	DateGroupModified *time.Time `json:"dateGroupModified,omitempty"`
}

// Kind distinguishes folders from bookmarks.
type Kind int

const (
	KindFolder Kind = iota
	KindBookmark
)

func (k Kind) String() string {
	if k == KindBookmark {
		return "bookmark"
	}
	return "folder"
}

// Kind classifies the node. A URL always wins over children.
func (n Node) Kind() Kind {
	if n.URL != nil {
		return KindBookmark
	}
	return KindFolder
}

// Child returns the direct child with the given id, or nil.
func (n *Node) Child(id string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].ID == id {
			return &n.Children[i]
		}
	}
	return nil
}

// Find walks the tree depth-first and returns the node with the given id.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for i := range n.Children {
		if found := n.Children[i].Find(id); found != nil {
			return found
		}
	}
	return nil
}

// asBookmark converts a bookmark node into the view model.
func (n Node) asBookmark() Bookmark {
	b := Bookmark{
		ID:        n.ID,
		Title:     n.Title,
		ParentID:  n.ParentID,
		DateAdded: n.DateAdded,
	}
	if n.URL != nil {
		b.URL = *n.URL
	}
	return b
}

// StringPtr returns a pointer to s. Handy for building Node URLs.
func StringPtr(s string) *string { return &s }
