package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nikbrunner/bmtab/internal/model"
)

var (
	// ErrUnavailable means the bookmark store cannot be reached at all.
	ErrUnavailable = errors.New("bookmark store unavailable")
	// ErrNotFound means no node has the requested id.
	ErrNotFound = errors.New("bookmark not found")
)

// BookmarkStore is the host bookmark capability: read the whole tree, edit
// a node in place, or remove it.
type BookmarkStore interface {
	GetTree(ctx context.Context) (*model.Node, error)
	Update(ctx context.Context, id string, changes model.BookmarkChanges) error
	Remove(ctx context.Context, id string) error
}

// Open opens the backend named in cfg.Backend.
// With BackendAuto the Chromium file is used when it exists, SQLite otherwise.
func Open(cfg Config) (BookmarkStore, error) {
	switch cfg.Backend {
	case BackendChrome:
		return NewChromeStorage(cfg.BookmarksPath), nil
	case BackendSQLite:
		return NewSQLiteStorage(cfg.DatabasePath)
	case BackendAuto:
		if cfg.BookmarksPath != "" {
			if _, err := os.Stat(cfg.BookmarksPath); err == nil {
				return NewChromeStorage(cfg.BookmarksPath), nil
			}
		}
		return NewSQLiteStorage(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Close releases the store if it holds resources.
func Close(s BookmarkStore) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
