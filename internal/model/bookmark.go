package model

import "time"

// Bookmark is a leaf entry shown inside a folder card.
type Bookmark struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	ParentID  string     `json:"parentId"`
	DateAdded *time.Time `json:"dateAdded,omitempty"`
}

// BookmarkChanges holds the editable fields of a bookmark.
type BookmarkChanges struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EditingBookmark is the state of an open edit form.
// FolderID may be UncategorizedFolderID.
type EditingBookmark struct {
	ID       string
	Title    string
	URL      string
	FolderID string
}

// Changes returns the editable fields of the form.
func (e EditingBookmark) Changes() BookmarkChanges {
	return BookmarkChanges{Title: e.Title, URL: e.URL}
}

// DeleteConfirm is the state of an open delete confirmation.
type DeleteConfirm struct {
	BookmarkID string
	Title      string
	FolderID   string
}
