package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/nikbrunner/bmtab/internal/model"
)

// chromeRoots maps the root keys of a Chromium Bookmarks file, in tree order.
var chromeRoots = []string{"bookmark_bar", "other", "synced"}

// webkitEpochOffset is the number of microseconds between 1601-01-01 and
// the Unix epoch. Chromium stores timestamps as microseconds since 1601.
const webkitEpochOffset = 11644473600000000

// ChromeStorage implements BookmarkStore on a Chromium "Bookmarks" file.
// Fields the dashboard does not know about are preserved on write.
type ChromeStorage struct {
	path string
	mu   sync.Mutex // serializes read-modify-write cycles
}

// NewChromeStorage creates a ChromeStorage for the given file path.
func NewChromeStorage(path string) *ChromeStorage {
	return &ChromeStorage{path: path}
}

// Path returns the bookmarks file path.
func (s *ChromeStorage) Path() string {
	return s.path
}

// GetTree reads the file and returns a synthetic root "0" whose children are
// the bookmark bar, other bookmarks and mobile bookmarks containers.
func (s *ChromeStorage) GetTree(ctx context.Context) (*model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	roots, _ := doc["roots"].(map[string]any)
	root := &model.Node{ID: "0", Children: []model.Node{}}
	for _, key := range chromeRoots {
		raw, ok := roots[key].(map[string]any)
		if !ok {
			continue
		}
		root.Children = append(root.Children, chromeNode(raw, root.ID))
	}
	return root, nil
}

// Update sets the title (and URL, for bookmarks) of the node with the given id.
func (s *ChromeStorage) Update(ctx context.Context, id string, changes model.BookmarkChanges) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	node, _ := findChromeNode(doc, id)
	if node == nil {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	node["name"] = changes.Title
	if node["type"] == "url" {
		node["url"] = changes.URL
	}
	return s.write(doc)
}

// Remove deletes the node with the given id. Root containers cannot be removed.
func (s *ChromeStorage) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	node, parent := findChromeNode(doc, id)
	if node == nil || parent == nil {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}

	children, _ := parent["children"].([]any)
	remaining := make([]any, 0, len(children))
	for _, c := range children {
		if m, ok := c.(map[string]any); ok && chromeString(m, "id") == id {
			continue
		}
		remaining = append(remaining, c)
	}
	parent["children"] = remaining
	return s.write(doc)
}

// read loads and decodes the whole file.
func (s *ChromeStorage) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrUnavailable, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrUnavailable, s.path, err)
	}
	if _, ok := doc["roots"].(map[string]any); !ok {
		return nil, fmt.Errorf("%w: %s has no roots", ErrUnavailable, s.path)
	}
	return doc, nil
}

// write replaces the file atomically (temp file then rename).
// The checksum is dropped because it no longer matches; Chromium accepts
// files without one.
func (s *ChromeStorage) write(doc map[string]any) error {
	delete(doc, "checksum")

	data, err := json.MarshalIndent(doc, "", "   ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".Bookmarks-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// findChromeNode returns the node with the given id and its parent.
// Root containers are returned with a nil parent.
func findChromeNode(doc map[string]any, id string) (node, parent map[string]any) {
	roots, _ := doc["roots"].(map[string]any)
	for _, key := range chromeRoots {
		raw, ok := roots[key].(map[string]any)
		if !ok {
			continue
		}
		if chromeString(raw, "id") == id {
			return raw, nil
		}
		if n, p := findChromeChild(raw, id); n != nil {
			return n, p
		}
	}
	return nil, nil
}

func findChromeChild(parent map[string]any, id string) (node, owner map[string]any) {
	children, _ := parent["children"].([]any)
	for _, c := range children {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if chromeString(m, "id") == id {
			return m, parent
		}
		if n, p := findChromeChild(m, id); n != nil {
			return n, p
		}
	}
	return nil, nil
}

// chromeNode converts a raw file node into a model.Node.
func chromeNode(raw map[string]any, parentID string) model.Node {
	n := model.Node{
		ID:        chromeString(raw, "id"),
		Title:     chromeString(raw, "name"),
		ParentID:  parentID,
		DateAdded: chromeTime(raw, "date_added"),
	}

	if chromeString(raw, "type") == "url" {
		url := chromeString(raw, "url")
		n.URL = &url
		return n
	}

	n.DateGroupModified = chromeTime(raw, "date_modified")
	children, _ := raw["children"].([]any)
	n.Children = make([]model.Node, 0, len(children))
	for _, c := range children {
		if m, ok := c.(map[string]any); ok {
			n.Children = append(n.Children, chromeNode(m, n.ID))
		}
	}
	return n
}

func chromeString(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// chromeTime parses a WebKit timestamp. Zero or missing values yield nil.
func chromeTime(raw map[string]any, key string) *time.Time {
	micros, err := strconv.ParseInt(chromeString(raw, key), 10, 64)
	if err != nil || micros <= 0 {
		return nil
	}
	t := time.UnixMicro(micros - webkitEpochOffset).UTC()
	return &t
}

// ChromeTimestamp formats t as a WebKit timestamp string.
func ChromeTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro()+webkitEpochOffset, 10)
}
