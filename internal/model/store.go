package model

import (
	"context"
	"time"
)

// LoadErrorMessage is shown when the initial bookmark load fails.
const LoadErrorMessage = "Failed to load bookmarks. Check that the bookmark store is available."

// Status is the load state of the Store.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// TreeSource delivers the host's bookmark tree.
type TreeSource interface {
	GetTree(ctx context.Context) (*Node, error)
}

// Store holds the folder list derived from the host tree.
// Its mutations only reflect host changes that already happened.
type Store struct {
	status  Status
	folders []Folder
	err     error
}

// NewStore creates a Store in the loading state.
func NewStore() *Store {
	return &Store{
		status:  StatusLoading,
		folders: []Folder{},
	}
}

// NewStoreWithFolders creates a ready Store holding the given folders.
func NewStoreWithFolders(folders []Folder) *Store {
	s := NewStore()
	s.SetFolders(folders)
	return s
}

// Status returns the current load state.
func (s *Store) Status() Status {
	return s.status
}

// Err returns the load error, or nil.
func (s *Store) Err() error {
	return s.err
}

// ErrorMessage returns the human-readable load failure, or "".
func (s *Store) ErrorMessage() string {
	if s.status != StatusFailed {
		return ""
	}
	return LoadErrorMessage
}

// Folders returns the current folder list.
func (s *Store) Folders() []Folder {
	return s.folders
}

// FolderByID finds a folder by ID, returns nil if not found.
func (s *Store) FolderByID(id string) *Folder {
	for i := range s.folders {
		if s.folders[i].ID == id {
			return &s.folders[i]
		}
	}
	return nil
}

// Load fetches the tree once and derives the folder list.
// On failure the store holds no folders; nothing is retried.
func (s *Store) Load(ctx context.Context, src TreeSource, now time.Time) error {
	s.MarkLoading()
	root, err := src.GetTree(ctx)
	return s.Apply(root, err, now)
}

// MarkLoading puts the store back into the loading state.
func (s *Store) MarkLoading() {
	s.status = StatusLoading
	s.err = nil
}

// Apply takes the outcome of a tree fetch done elsewhere.
func (s *Store) Apply(root *Node, err error, now time.Time) error {
	if err != nil {
		s.Fail(err)
		return err
	}
	s.SetFolders(BuildFolders(root, now))
	return nil
}

// SetFolders replaces the folder list and marks the store ready.
func (s *Store) SetFolders(folders []Folder) {
	if folders == nil {
		folders = []Folder{}
	}
	s.folders = folders
	s.status = StatusReady
	s.err = nil
}

// Fail marks the load as failed and drops all folders.
func (s *Store) Fail(err error) {
	s.folders = []Folder{}
	s.status = StatusFailed
	s.err = err
}

// UpdateBookmark replaces title and URL of one bookmark in one folder.
// Returns false when the folder or bookmark is unknown.
func (s *Store) UpdateBookmark(bookmarkID, folderID string, changes BookmarkChanges) bool {
	folder := s.FolderByID(folderID)
	if folder == nil {
		return false
	}
	for i := range folder.Bookmarks {
		if folder.Bookmarks[i].ID != bookmarkID {
			continue
		}
		// Copy so slices handed out earlier keep their values.
		updated := make([]Bookmark, len(folder.Bookmarks))
		copy(updated, folder.Bookmarks)
		updated[i].Title = changes.Title
		updated[i].URL = changes.URL
		folder.Bookmarks = updated
		return true
	}
	return false
}

// RemoveBookmark drops one bookmark from one folder, keeping the order of
// the rest. Returns false when the folder or bookmark is unknown.
func (s *Store) RemoveBookmark(bookmarkID, folderID string) bool {
	folder := s.FolderByID(folderID)
	if folder == nil {
		return false
	}
	for i := range folder.Bookmarks {
		if folder.Bookmarks[i].ID != bookmarkID {
			continue
		}
		remaining := make([]Bookmark, 0, len(folder.Bookmarks)-1)
		remaining = append(remaining, folder.Bookmarks[:i]...)
		remaining = append(remaining, folder.Bookmarks[i+1:]...)
		folder.Bookmarks = remaining
		return true
	}
	return false
}
