package model

import "time"

// rootContainers returns the bookmark bar and other-bookmarks containers in
// scan order. Missing containers are skipped.
func rootContainers(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var containers []*Node
	for _, id := range []string{RootBookmarkBarID, RootOtherBookmarksID} {
		if c := root.Child(id); c != nil {
			containers = append(containers, c)
		}
	}
	return containers
}

// ExtractFolders returns the folders that sit directly under the bookmark bar
// and other-bookmarks containers and have at least one child.
// Bar folders come first; order within each container is preserved.
func ExtractFolders(root *Node) []Folder {
	folders := []Folder{}
	for _, container := range rootContainers(root) {
		for _, child := range container.Children {
			if child.Kind() == KindFolder && len(child.Children) > 0 {
				folders = append(folders, folderFromNode(child))
			}
		}
	}
	return folders
}

// ExtractUncategorizedBookmarks returns the bookmarks that sit directly under
// the root containers, each tagged with its container's id as parent.
func ExtractUncategorizedBookmarks(root *Node) []Bookmark {
	bookmarks := []Bookmark{}
	for _, container := range rootContainers(root) {
		for _, child := range container.Children {
			if child.Kind() != KindBookmark {
				continue
			}
			b := child.asBookmark()
			b.ParentID = container.ID
			bookmarks = append(bookmarks, b)
		}
	}
	return bookmarks
}

// UncategorizedFolder builds the virtual folder holding the given bookmarks.
func UncategorizedFolder(bookmarks []Bookmark, now time.Time) Folder {
	return Folder{
		ID:                UncategorizedFolderID,
		Title:             UncategorizedTitle,
		ParentID:          VirtualParentID,
		DateAdded:         &now,
		DateGroupModified: &now,
		Bookmarks:         bookmarks,
	}
}

// BuildFolders returns the full folder list for display: the extracted
// folders followed by the uncategorized folder when it is not empty.
func BuildFolders(root *Node, now time.Time) []Folder {
	folders := ExtractFolders(root)
	if loose := ExtractUncategorizedBookmarks(root); len(loose) > 0 {
		folders = append(folders, UncategorizedFolder(loose, now))
	}
	return folders
}
