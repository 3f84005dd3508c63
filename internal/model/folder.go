package model

import "time"

// Folder is a display unit: a second-level folder of the host tree, or the
// virtual uncategorized folder.
type Folder struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ParentID          string     `json:"parentId"`
	DateAdded         *time.Time `json:"dateAdded,omitempty"`
	DateGroupModified *time.Time `json:"dateGroupModified,omitempty"`
	Bookmarks         []Bookmark `json:"bookmarks"`
	Subfolders        int        `json:"subfolders"` // nested folders, never expanded
}

// IsVirtual reports whether the folder exists only in memory.
func (f Folder) IsVirtual() bool {
	return f.ID == UncategorizedFolderID
}

// PreviewBookmarks returns at most limit bookmarks for a folder card.
func PreviewBookmarks(f Folder, limit int) []Bookmark {
	if limit < 0 || len(f.Bookmarks) <= limit {
		return f.Bookmarks
	}
	return f.Bookmarks[:limit]
}

// folderFromNode converts a qualifying folder node into the view model.
func folderFromNode(n Node) Folder {
	f := Folder{
		ID:                n.ID,
		Title:             n.Title,
		ParentID:          n.ParentID,
		DateAdded:         n.DateAdded,
		DateGroupModified: n.DateGroupModified,
		Bookmarks:         []Bookmark{},
	}
	for _, child := range n.Children {
		switch child.Kind() {
		case KindBookmark:
			f.Bookmarks = append(f.Bookmarks, child.asBookmark())
		case KindFolder:
			f.Subfolders++
		}
	}
	return f
}
