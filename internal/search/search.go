package search

import (
	"strings"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/sahilm/fuzzy"
)

// FilterFolders keeps the folders whose title, or any bookmark title,
// contains term (case-insensitive). An empty term returns folders as is.
// Matching folders keep all of their bookmarks.
func FilterFolders(folders []model.Folder, term string) []model.Folder {
	if term == "" {
		return folders
	}

	needle := strings.ToLower(term)
	result := make([]model.Folder, 0, len(folders))
	for _, f := range folders {
		if folderMatches(f, needle) {
			result = append(result, f)
		}
	}
	return result
}

func folderMatches(f model.Folder, needle string) bool {
	if strings.Contains(strings.ToLower(f.Title), needle) {
		return true
	}
	for _, b := range f.Bookmarks {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			return true
		}
	}
	return false
}

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       *model.Bookmark
	FolderID       string
	FolderTitle    string
	MatchedIndexes []int
	Score          int
}

type candidate struct {
	bookmark *model.Bookmark
	folder   *model.Folder
}

// candidates implements fuzzy.Source over every bookmark in every folder.
type candidates []candidate

func (c candidates) String(i int) string {
	return c[i].bookmark.Title
}

func (c candidates) Len() int {
	return len(c)
}

// FuzzySearchBookmarks searches all bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(folders []model.Folder, query string) []SearchResult {
	if query == "" {
		return nil
	}

	var all candidates
	for i := range folders {
		f := &folders[i]
		for j := range f.Bookmarks {
			all = append(all, candidate{bookmark: &f.Bookmarks[j], folder: f})
		}
	}

	matches := fuzzy.FindFrom(query, all)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		c := all[m.Index]
		results[i] = SearchResult{
			Bookmark:       c.bookmark,
			FolderID:       c.folder.ID,
			FolderTitle:    c.folder.Title,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
