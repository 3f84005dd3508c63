package tui_test

import (
	"context"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmtab/internal/controller"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/prefs"
	"github.com/nikbrunner/bmtab/internal/theme"
	"github.com/nikbrunner/bmtab/internal/tui"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

// createTestApp builds an app over folders that are already loaded.
func createTestApp(width, height int, folders []model.Folder) tui.App {
	ctrl := controller.New(model.NewStoreWithFolders(folders), &fakeHost{}, fixedNow)
	cfg := layout.DefaultConfig()
	return tui.NewApp(tui.AppParams{
		Controller:   ctrl,
		Themes:       theme.Load(theme.DefaultRegistry(), prefs.NewMemory()),
		LayoutConfig: &cfg,
		Now:          fixedNow,
	}).WithDimensions(width, height)
}

func render(app tui.App) string {
	return layout.StripANSI(app.View())
}

func TestView_HeaderShowsClockAndDate(t *testing.T) {
	out := render(createTestApp(80, 24, nil))

	assert.Assert(t, cmp.Contains(out, "09:30"))
	assert.Assert(t, cmp.Contains(out, "Wednesday, January 1, 2025"))
}

func TestView_Loading(t *testing.T) {
	ctrl := controller.New(model.NewStore(), &fakeHost{}, fixedNow)
	app := tui.NewApp(tui.AppParams{
		Controller: ctrl,
		Themes:     theme.Load(theme.DefaultRegistry(), prefs.NewMemory()),
		Now:        fixedNow,
	})

	assert.Assert(t, cmp.Contains(render(app), "Loading bookmarks..."))
}

func TestView_EmptyState(t *testing.T) {
	out := render(createTestApp(80, 24, nil))

	assert.Assert(t, cmp.Contains(out, "No bookmark folders found"))
}

func TestView_CardPreview(t *testing.T) {
	ctrl := controller.New(model.NewStore(), &fakeHost{tree: testTree()}, fixedNow)
	assert.NilError(t, ctrl.Reload(context.Background()))
	app := tui.NewApp(tui.AppParams{
		Controller: ctrl,
		Themes:     theme.Load(theme.DefaultRegistry(), prefs.NewMemory()),
		Now:        fixedNow,
	}).WithDimensions(120, 40)

	out := render(app)

	assert.Assert(t, cmp.Contains(out, "Work (7)"))
	assert.Assert(t, cmp.Contains(out, "News (2)"))
	assert.Assert(t, cmp.Contains(out, "Uncategorized (1)"))
	assert.Assert(t, cmp.Contains(out, "Link 5"))
	assert.Assert(t, !strings.Contains(out, "Link 6"), "only five bookmarks are previewed")
	assert.Assert(t, cmp.Contains(out, "view all 7 (v)"))
	assert.Assert(t, cmp.Contains(out, "› Link 1"))
}

func TestView_EmptyFolderCard(t *testing.T) {
	out := render(createTestApp(80, 24, []model.Folder{{ID: "f1", Title: "Empty"}}))

	assert.Assert(t, cmp.Contains(out, "Empty (0)"))
	assert.Assert(t, cmp.Contains(out, "This folder has no bookmarks"))
}

func TestView_LongTitleKeepsCount(t *testing.T) {
	folder := model.Folder{
		ID:        "f1",
		Title:     strings.Repeat("Very long folder name ", 6),
		Bookmarks: []model.Bookmark{{ID: "b1", Title: "One", URL: "https://one.example"}},
	}
	out := render(createTestApp(80, 24, []model.Folder{folder}))

	assert.Assert(t, cmp.Contains(out, "... (1)"))
}

func TestView_NarrowTerminalUsesOneColumn(t *testing.T) {
	folders := []model.Folder{
		{ID: "a", Title: "Alpha", Bookmarks: []model.Bookmark{{ID: "1", Title: "A1", URL: "https://a.example"}}},
		{ID: "b", Title: "Beta", Bookmarks: []model.Bookmark{{ID: "2", Title: "B1", URL: "https://b.example"}}},
	}
	out := render(createTestApp(40, 40, folders))

	var alphaLine, betaLine int
	for i, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Alpha (1)") {
			alphaLine = i
		}
		if strings.Contains(line, "Beta (1)") {
			betaLine = i
		}
	}
	assert.Assert(t, betaLine > alphaLine, "cards should stack vertically")
}

func TestView_ThemeMenuMarksCurrent(t *testing.T) {
	h := newHarness(t, &fakeHost{tree: testTree()}, nil)
	h.press("t")

	out := h.view()

	assert.Assert(t, cmp.Contains(out, "Fresh Teal ✓"))
	assert.Assert(t, cmp.Contains(out, "Sky Blue"))
}

func TestView_ConfirmDialog(t *testing.T) {
	h := newHarness(t, &fakeHost{tree: testTree()}, nil)
	h.press("d")

	out := h.view()

	assert.Assert(t, cmp.Contains(out, "Delete Bookmark?"))
	assert.Assert(t, cmp.Contains(out, `"Link 1"`))
	assert.Assert(t, cmp.Contains(out, "This action cannot be undone."))
}

func TestView_EditModalShowsValues(t *testing.T) {
	h := newHarness(t, &fakeHost{tree: testTree()}, nil)
	h.press("e")

	out := h.view()

	assert.Assert(t, cmp.Contains(out, "Edit Bookmark"))
	assert.Assert(t, cmp.Contains(out, "Link 1"))
	assert.Assert(t, cmp.Contains(out, "https://example.com/1"))
}

func TestView_DetailHeader(t *testing.T) {
	h := newHarness(t, &fakeHost{tree: testTree()}, nil)
	h.press("l")
	h.press("v")

	assert.Assert(t, cmp.Contains(h.view(), "News · 2 bookmarks"))
}
