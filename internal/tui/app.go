package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nikbrunner/bmtab/internal/background"
	"github.com/nikbrunner/bmtab/internal/browser"
	"github.com/nikbrunner/bmtab/internal/controller"
	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/theme"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

const (
	msgCopied       = "URL copied"
	msgCopyFailed   = "Failed to copy URL"
	msgOpenFailed   = "Failed to open bookmark"
	msgThemeFailed  = "Failed to save theme"
	defaultInterval = 30 * time.Second
)

// App is the main bubbletea model for the new tab dashboard.
type App struct {
	ctx          context.Context
	ctrl         *controller.Controller
	themes       *theme.Selection
	bg           *background.Manager
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	now           func() time.Time
	clockInterval time.Duration
	clock         time.Time
	openURL       func(string) error
	copyText      func(string) error

	mode        Mode
	cursor      GridCursor
	detailIdx   int
	themeIdx    int
	searchInput textinput.Model
	form        EditForm

	// For gg command
	lastKeyWasG bool
	quitting    bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Controller    *controller.Controller
	Themes        *theme.Selection
	Background    *background.Manager // optional
	Context       context.Context     // optional
	Keys          *KeyMap             // optional, uses default if nil
	LayoutConfig  *layout.LayoutConfig
	Now           func() time.Time
	ClockInterval time.Duration
	OpenURL       func(string) error // defaults to the system browser
	CopyText      func(string) error // defaults to the system clipboard
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	interval := params.ClockInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	openURL := params.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}
	copyText := params.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	return App{
		ctx:           ctx,
		ctrl:          params.Controller,
		themes:        params.Themes,
		bg:            params.Background,
		keys:          keys,
		styles:        NewStyles(params.Themes.Current()),
		layoutConfig:  layoutCfg,
		now:           now,
		clockInterval: interval,
		clock:         now(),
		openURL:       openURL,
		copyText:      copyText,
		mode:          ModeNormal,
		searchInput:   NewSearchInput(layoutCfg),
		form:          NewEditForm(layoutCfg),
		width:         80,
		height:        24,
	}
}

// WithDimensions returns a copy of the app with fixed terminal dimensions.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Cursor returns the grid cursor.
func (a App) Cursor() GridCursor {
	return a.cursor
}

// DetailCursor returns the selected row in the folder detail modal.
func (a App) DetailCursor() int {
	return a.detailIdx
}

// Controller returns the interaction controller.
func (a App) Controller() *controller.Controller {
	return a.ctrl
}

// Init implements tea.Model. It starts the tree load, the clock and, when
// the cached background is missing or stale, a background fetch.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadTreeCmd(), a.clockTickCmd()}
	if a.bg != nil && a.bg.Init() {
		cmds = append(cmds, a.startBackgroundFetch())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case treeLoadedMsg:
		_ = a.ctrl.FinishReload(msg.root, msg.err)
		a.clampCursor()
		return a, nil

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case backgroundDoneMsg:
		text := a.bg.CompleteFetch(msg.result)
		if text == background.MessageUpdated {
			a.ctrl.Messages().Success(text)
		} else {
			a.ctrl.Messages().Error(text)
		}
		return a, messageExpiryCmd()

	case clockTickMsg:
		a.clock = time.Time(msg)
		if a.quitting {
			return a, nil
		}
		return a, a.clockTickCmd()

	case messageExpiredMsg:
		a.clock = a.now()
		return a, nil

	case openedMsg:
		if msg.err != nil {
			logging.L().Warn("open bookmark", zap.String("url", msg.url), zap.Error(msg.err))
			a.ctrl.Messages().Error(msgOpenFailed)
			return a, messageExpiryCmd()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	switch a.mode {
	case ModeSearch:
		return a.handleSearchKey(msg)
	case ModeDetail:
		return a.handleDetailKey(msg)
	case ModeEdit:
		return a.handleEditKey(msg)
	case ModeConfirmDelete:
		return a.handleConfirmKey(msg)
	case ModeThemes:
		return a.handleThemesKey(msg)
	}

	switch a.ctrl.Store().Status() {
	case model.StatusLoading:
		if key.Matches(msg, a.keys.Quit) {
			return a.quit()
		}
		return a, nil
	case model.StatusFailed:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a.quit()
		case key.Matches(msg, a.keys.Reload):
			return a.reload()
		}
		return a, nil
	}

	return a.handleNormalKey(msg)
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.quitting = true
	return a, tea.Quit
}

func (a App) reload() (tea.Model, tea.Cmd) {
	a.ctrl.BeginReload()
	a.mode = ModeNormal
	a.cursor = GridCursor{}
	a.detailIdx = 0
	return a, a.loadTreeCmd()
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = GridCursor{}
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Cancel):
		if a.ctrl.Search() != "" {
			a.searchInput.Reset()
			a.ctrl.SetSearch("")
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Down):
		a.moveDown()

	case key.Matches(msg, a.keys.Up):
		a.moveUp()

	case key.Matches(msg, a.keys.Right):
		if a.cursor.Folder < len(a.ctrl.VisibleFolders())-1 {
			a.cursor.Folder++
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Left):
		if a.cursor.Folder > 0 {
			a.cursor.Folder--
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Bottom):
		if n := len(a.ctrl.VisibleFolders()); n > 0 {
			a.cursor = GridCursor{Folder: n - 1}
		}

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		cmd := a.searchInput.Focus()
		return a, cmd

	case key.Matches(msg, a.keys.Detail):
		if f, ok := a.selectedFolder(); ok {
			a.ctrl.OpenFolder(f.ID)
			a.detailIdx = 0
			a.mode = ModeDetail
		}

	case key.Matches(msg, a.keys.Themes):
		a.themeIdx = max(0, a.themes.Registry().IndexOf(a.themes.Current().ID))
		a.mode = ModeThemes

	case key.Matches(msg, a.keys.ToggleBackground):
		return a.toggleBackground()

	case key.Matches(msg, a.keys.RefreshBackground):
		return a.refreshBackground()

	case key.Matches(msg, a.keys.Reload):
		return a.reload()

	default:
		return a.handleBookmarkAction(msg)
	}

	return a, nil
}

// handleBookmarkAction runs the actions shared by the grid and the
// detail modal on the selected bookmark.
func (a App) handleBookmarkAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b, folderID, ok := a.selectedBookmark()
	if !ok {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Open):
		return a, a.openURLCmd(b.URL)

	case key.Matches(msg, a.keys.Edit):
		if a.ctrl.StartEdit(b, folderID) {
			a.form.Load(a.ctrl.Editing())
			a.mode = ModeEdit
		}

	case key.Matches(msg, a.keys.Delete):
		a.ctrl.StartDelete(b, folderID)
		a.mode = ModeConfirmDelete

	case key.Matches(msg, a.keys.YankURL):
		if err := a.copyText(b.URL); err != nil {
			logging.L().Warn("copy url", zap.Error(err))
			a.ctrl.Messages().Error(msgCopyFailed)
		} else {
			a.ctrl.Messages().Success(msgCopied)
		}
		return a, messageExpiryCmd()
	}

	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searchInput.Reset()
		a.searchInput.Blur()
		a.ctrl.SetSearch("")
		a.mode = ModeNormal
		a.clampCursor()
		return a, nil

	case tea.KeyEnter:
		a.searchInput.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() != a.ctrl.Search() {
		a.ctrl.SetSearch(a.searchInput.Value())
		a.cursor = GridCursor{}
	}
	return a, cmd
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	folder := a.ctrl.ActiveFolder()
	if folder == nil {
		a.closeDetail()
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Detail), key.Matches(msg, a.keys.Quit):
		a.closeDetail()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.detailIdx < len(folder.Bookmarks)-1 {
			a.detailIdx++
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.detailIdx > 0 {
			a.detailIdx--
		}
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if n := len(folder.Bookmarks); n > 0 {
			a.detailIdx = n - 1
		}
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.detailIdx = 0
		return a, nil
	}

	return a.handleBookmarkAction(msg)
}

func (a *App) closeDetail() {
	a.ctrl.CloseFolder()
	a.detailIdx = 0
	a.mode = ModeNormal
	a.clampCursor()
}

func (a App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.ctrl.CancelEdit()
		a.mode = a.baseMode()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		a.ctrl.UpdateEdit(a.form.Changes())
		m, err := a.ctrl.BeginSave()
		if err != nil {
			a.mode = a.baseMode()
			return a, nil
		}
		return a, a.mutationCmd(m)

	case key.Matches(msg, a.keys.NextField), msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		a.form.ToggleFocus()
		return a, nil
	}

	var cmd tea.Cmd
	if a.form.Focus == 0 {
		a.form.TitleInput, cmd = a.form.TitleInput.Update(msg)
	} else {
		a.form.URLInput, cmd = a.form.URLInput.Update(msg)
	}
	a.ctrl.UpdateEdit(a.form.Changes())
	return a, cmd
}

func (a App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		a.ctrl.CancelDelete()
		a.mode = a.baseMode()
		return a, nil

	case "enter", "y":
		m, err := a.ctrl.BeginDelete()
		if err != nil {
			a.mode = a.baseMode()
			return a, nil
		}
		return a, a.mutationCmd(m)
	}
	return a, nil
}

func (a App) handleThemesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := a.themes.Registry().All()

	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Themes), key.Matches(msg, a.keys.Quit):
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.themeIdx < len(all)-1 {
			a.themeIdx++
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.themeIdx > 0 {
			a.themeIdx--
		}
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		chosen := all[a.themeIdx]
		_, err := a.themes.Select(chosen.ID)
		a.styles = NewStyles(a.themes.Current())
		a.mode = ModeNormal
		if err != nil {
			logging.L().Warn("persist theme", zap.String("theme", chosen.ID), zap.Error(err))
			a.ctrl.Messages().Error(msgThemeFailed)
			return a, messageExpiryCmd()
		}
		return a, nil

	case key.Matches(msg, a.keys.ToggleBackground):
		return a.toggleBackground()

	case key.Matches(msg, a.keys.RefreshBackground):
		return a.refreshBackground()
	}

	return a, nil
}

func (a App) toggleBackground() (tea.Model, tea.Cmd) {
	if a.bg == nil {
		return a, nil
	}
	if a.bg.Toggle() {
		return a, a.startBackgroundFetch()
	}
	return a, nil
}

func (a App) refreshBackground() (tea.Model, tea.Cmd) {
	if a.bg == nil || !a.bg.Enabled() {
		return a, nil
	}
	return a, a.startBackgroundFetch()
}

func (a App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	switch msg.mutation.Kind {
	case controller.MutationUpdate:
		a.ctrl.FinishSave(msg.mutation, msg.err)
		if a.mode == ModeEdit && a.ctrl.Editing() == nil {
			a.mode = a.baseMode()
		}
	case controller.MutationRemove:
		a.ctrl.FinishDelete(msg.mutation, msg.err)
		if a.mode == ModeConfirmDelete && a.ctrl.Confirming() == nil {
			a.mode = a.baseMode()
		}
	}
	a.clampCursor()
	return a, messageExpiryCmd()
}

// baseMode is the mode underneath the edit and delete overlays.
func (a App) baseMode() Mode {
	if a.ctrl.ActiveFolder() != nil {
		return ModeDetail
	}
	return ModeNormal
}

// selectedFolder returns the folder under the grid cursor.
func (a App) selectedFolder() (model.Folder, bool) {
	folders := a.ctrl.VisibleFolders()
	if a.cursor.Folder < 0 || a.cursor.Folder >= len(folders) {
		return model.Folder{}, false
	}
	return folders[a.cursor.Folder], true
}

// selectedBookmark returns the bookmark under the cursor of the current
// mode and the folder id it belongs to.
func (a App) selectedBookmark() (model.Bookmark, string, bool) {
	if a.mode == ModeDetail {
		folder := a.ctrl.ActiveFolder()
		if folder == nil || a.detailIdx >= len(folder.Bookmarks) {
			return model.Bookmark{}, "", false
		}
		return folder.Bookmarks[a.detailIdx], folder.ID, true
	}

	folder, ok := a.selectedFolder()
	if !ok {
		return model.Bookmark{}, "", false
	}
	preview := model.PreviewBookmarks(folder, a.layoutConfig.Grid.PreviewLimit)
	if a.cursor.Row >= len(preview) {
		return model.Bookmark{}, "", false
	}
	return preview[a.cursor.Row], folder.ID, true
}

func (a App) previewLen(folderIdx int) int {
	folders := a.ctrl.VisibleFolders()
	if folderIdx < 0 || folderIdx >= len(folders) {
		return 0
	}
	return len(model.PreviewBookmarks(folders[folderIdx], a.layoutConfig.Grid.PreviewLimit))
}

func (a *App) moveDown() {
	if a.cursor.Row < a.previewLen(a.cursor.Folder)-1 {
		a.cursor.Row++
		return
	}
	n := len(a.ctrl.VisibleFolders())
	cols := layout.CalculateGrid(a.width, a.layoutConfig.Grid).Columns
	next := a.cursor.Folder + cols
	if next >= n {
		// Partial last row: fall back to its last card
		if layout.RowCount(a.cursor.Folder+1, cols) < layout.RowCount(n, cols) {
			next = n - 1
		} else {
			return
		}
	}
	a.cursor = GridCursor{Folder: next}
}

func (a *App) moveUp() {
	if a.cursor.Row > 0 {
		a.cursor.Row--
		return
	}
	cols := layout.CalculateGrid(a.width, a.layoutConfig.Grid).Columns
	prev := a.cursor.Folder - cols
	if prev < 0 {
		return
	}
	a.cursor = GridCursor{Folder: prev, Row: max(0, a.previewLen(prev)-1)}
}

// clampCursor keeps the cursors inside the current folder list.
func (a *App) clampCursor() {
	n := len(a.ctrl.VisibleFolders())
	if a.cursor.Folder >= n {
		a.cursor.Folder = max(0, n-1)
	}
	if a.cursor.Folder < 0 {
		a.cursor.Folder = 0
	}
	if rows := a.previewLen(a.cursor.Folder); a.cursor.Row >= rows {
		a.cursor.Row = max(0, rows-1)
	}

	if folder := a.ctrl.ActiveFolder(); folder != nil {
		if a.detailIdx >= len(folder.Bookmarks) {
			a.detailIdx = max(0, len(folder.Bookmarks)-1)
		}
	} else if a.mode == ModeDetail {
		a.mode = ModeNormal
		a.detailIdx = 0
	}
}
