package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const chromeFixture = `{
   "checksum": "0123456789abcdef",
   "roots": {
      "bookmark_bar": {
         "children": [ {
            "children": [ {
               "date_added": "13350000000000000",
               "guid": "g-b1",
               "id": "5",
               "name": "Site",
               "type": "url",
               "url": "http://x"
            } ],
            "date_added": "13350000000000000",
            "date_modified": "13350000000000000",
            "guid": "g-f1",
            "id": "4",
            "name": "Work",
            "type": "folder"
         }, {
            "date_added": "0",
            "guid": "g-b3",
            "id": "7",
            "name": "Loose",
            "type": "url",
            "url": "http://loose"
         } ],
         "date_added": "13350000000000000",
         "date_modified": "0",
         "guid": "g-bar",
         "id": "1",
         "name": "Bookmarks bar",
         "type": "folder"
      },
      "other": {
         "children": [ {
            "date_added": "13350000000000000",
            "guid": "g-b2",
            "id": "6",
            "meta_info": { "power_bookmark_meta": "" },
            "name": "Direct",
            "type": "url",
            "url": "http://y"
         } ],
         "id": "2",
         "name": "Other bookmarks",
         "type": "folder"
      },
      "synced": {
         "children": [ ],
         "id": "3",
         "name": "Mobile bookmarks",
         "type": "folder"
      }
   },
   "version": 1
}`

func writeChromeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Bookmarks")
	if err := os.WriteFile(path, []byte(chromeFixture), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestChromeStorage_GetTree(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))

	root, err := s.GetTree(context.Background())
	assert.NilError(t, err)

	assert.Equal(t, root.ID, "0")
	assert.Assert(t, is.Len(root.Children, 3))
	assert.Equal(t, root.Children[0].ID, "1")
	assert.Equal(t, root.Children[1].ID, "2")
	assert.Equal(t, root.Children[2].ID, "3")

	work := root.Find("4")
	assert.Equal(t, work.Title, "Work")
	assert.Equal(t, work.Kind(), model.KindFolder)
	assert.Equal(t, work.ParentID, "1")

	site := root.Find("5")
	assert.Equal(t, *site.URL, "http://x")
	assert.Equal(t, site.ParentID, "4")
	assert.Assert(t, site.DateAdded != nil)
	assert.Equal(t, site.DateAdded.Year(), 2024)

	assert.Assert(t, root.Find("7").DateAdded == nil, "zero timestamps mean unknown")
}

func TestChromeStorage_FeedsExtractor(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))
	root, err := s.GetTree(context.Background())
	assert.NilError(t, err)

	folders := model.BuildFolders(root, time.Now())
	assert.Assert(t, is.Len(folders, 2))
	assert.Equal(t, folders[0].ID, "4")
	assert.Equal(t, folders[1].ID, model.UncategorizedFolderID)

	var ids []string
	for _, b := range folders[1].Bookmarks {
		ids = append(ids, b.ID+"@"+b.ParentID)
	}
	assert.DeepEqual(t, ids, []string{"7@1", "6@2"})
}

func TestChromeStorage_Update(t *testing.T) {
	path := writeChromeFixture(t)
	s := storage.NewChromeStorage(path)
	ctx := context.Background()

	err := s.Update(ctx, "5", model.BookmarkChanges{Title: "Renamed", URL: "http://renamed"})
	assert.NilError(t, err)

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)
	site := root.Find("5")
	assert.Equal(t, site.Title, "Renamed")
	assert.Equal(t, *site.URL, "http://renamed")

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(string(data), "checksum"))
	assert.Assert(t, strings.Contains(string(data), `"guid": "g-b1"`), "unknown fields must survive")
	assert.Assert(t, strings.Contains(string(data), "power_bookmark_meta"))

	var doc map[string]any
	assert.NilError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, doc["version"], float64(1))
}

func TestChromeStorage_UpdateFolderKeepsType(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))
	ctx := context.Background()

	assert.NilError(t, s.Update(ctx, "4", model.BookmarkChanges{Title: "Job", URL: "http://nope"}))

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)
	work := root.Find("4")
	assert.Equal(t, work.Title, "Job")
	assert.Assert(t, work.URL == nil)
}

func TestChromeStorage_Remove(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))
	ctx := context.Background()

	assert.NilError(t, s.Remove(ctx, "6"))
	assert.NilError(t, s.Remove(ctx, "5"))

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)
	assert.Assert(t, root.Find("6") == nil)
	assert.Assert(t, root.Find("5") == nil)
	assert.Assert(t, is.Len(root.Find("4").Children, 0))
	assert.Assert(t, root.Find("7") != nil)
}

func TestChromeStorage_NotFound(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, "99", model.BookmarkChanges{}), storage.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "99"), storage.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "1"), storage.ErrNotFound, "root containers cannot be removed")
}

func TestChromeStorage_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"invalid json", model.StringPtr("{not json")},
		{"no roots", model.StringPtr(`{"version": 1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Bookmarks")
			if tt.content != nil {
				assert.NilError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}

			_, err := storage.NewChromeStorage(path).GetTree(context.Background())
			assert.ErrorIs(t, err, storage.ErrUnavailable)
		})
	}
}

func TestChromeStorage_CancelledContext(t *testing.T) {
	s := storage.NewChromeStorage(writeChromeFixture(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetTree(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChromeTimestamp_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, storage.ChromeTimestamp(ts), "13348638245000000")
}
