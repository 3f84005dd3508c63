package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

// Mode is the interaction mode; overlays are modes too.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeDetail
	ModeEdit
	ModeConfirmDelete
	ModeThemes
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSearch:
		return "search"
	case ModeDetail:
		return "detail"
	case ModeEdit:
		return "edit"
	case ModeConfirmDelete:
		return "confirm-delete"
	case ModeThemes:
		return "themes"
	}
	return "unknown"
}

// GridCursor addresses a bookmark row inside a folder card.
type GridCursor struct {
	Folder int // index into the visible folders
	Row    int // index into the card's preview rows
}

// EditForm holds the inputs of the edit modal.
type EditForm struct {
	TitleInput textinput.Model
	URLInput   textinput.Model
	Focus      int // 0 = title, 1 = URL
}

// NewEditForm creates an EditForm with initialized inputs.
func NewEditForm(cfg layout.LayoutConfig) EditForm {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = cfg.Input.TitleCharLimit
	titleInput.Width = cfg.Input.StandardWidth

	urlInput := textinput.New()
	urlInput.Placeholder = "https://..."
	urlInput.CharLimit = cfg.Input.URLCharLimit
	urlInput.Width = cfg.Input.StandardWidth

	return EditForm{
		TitleInput: titleInput,
		URLInput:   urlInput,
	}
}

// Load fills the inputs from an edit session and focuses the title.
func (f *EditForm) Load(e *model.EditingBookmark) {
	f.TitleInput.SetValue(e.Title)
	f.TitleInput.CursorEnd()
	f.URLInput.SetValue(e.URL)
	f.URLInput.CursorEnd()
	f.Focus = 0
	f.TitleInput.Focus()
	f.URLInput.Blur()
}

// ToggleFocus moves focus to the other input.
func (f *EditForm) ToggleFocus() {
	if f.Focus == 0 {
		f.Focus = 1
		f.TitleInput.Blur()
		f.URLInput.Focus()
		return
	}
	f.Focus = 0
	f.URLInput.Blur()
	f.TitleInput.Focus()
}

// Changes returns the current input values.
func (f EditForm) Changes() model.BookmarkChanges {
	return model.BookmarkChanges{
		Title: f.TitleInput.Value(),
		URL:   f.URLInput.Value(),
	}
}

// NewSearchInput creates the search input.
func NewSearchInput(cfg layout.LayoutConfig) textinput.Model {
	input := textinput.New()
	input.Placeholder = "Search folders and bookmarks..."
	input.Prompt = "/ "
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.SearchWidth
	return input
}
