package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmtab/internal/background"
	"github.com/nikbrunner/bmtab/internal/controller"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

const (
	textLoading     = "Loading bookmarks..."
	textNoFolders   = "No bookmark folders found"
	textNoMatches   = "No folders or bookmarks match your search"
	textEmptyFolder = "This folder has no bookmarks"
	textCannotUndo  = "This action cannot be undone."
	timeLayout      = "15:04"
	dateLayout      = "Monday, January 2, 2006"
)

// renderView creates the complete screen.
func (a App) renderView() string {
	if a.quitting {
		return ""
	}

	var content string
	switch a.mode {
	case ModeDetail, ModeEdit, ModeConfirmDelete, ModeThemes:
		content = a.renderModal()
	default:
		content = a.styles.App.Render(a.renderDashboard())
	}

	// Use Place to ensure exact terminal dimensions and prevent overflow
	if tint, ok := a.backdrop(); ok {
		return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content,
			lipgloss.WithWhitespaceBackground(tint))
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) backdrop() (lipgloss.Color, bool) {
	if a.bg == nil {
		return "", false
	}
	return a.bg.Tint()
}

// renderDashboard renders header, grid (or a status screen) and footer.
func (a App) renderDashboard() string {
	header := a.renderHeader()
	store := a.ctrl.Store()

	switch store.Status() {
	case model.StatusLoading:
		return lipgloss.JoinVertical(lipgloss.Left, header, "", a.styles.Empty.Render(textLoading))

	case model.StatusFailed:
		body := a.styles.Error.Render(store.ErrorMessage()) + "\n\n" +
			a.renderHintsInline([]Hint{{Key: "r", Desc: "reload"}, {Key: "q", Desc: "quit"}})
		return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	}

	var body string
	folders := a.ctrl.VisibleFolders()
	switch {
	case len(store.Folders()) == 0:
		body = a.styles.Empty.Render(textNoFolders)
	case len(folders) == 0:
		body = a.styles.Empty.Render(textNoMatches)
	default:
		body = a.renderGrid(folders)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, a.renderSearchBar(), body, a.renderFooter())
}

// renderHeader renders the clock and the full date.
func (a App) renderHeader() string {
	return a.styles.Clock.Render(a.clock.Format(timeLayout)) + "\n" +
		a.styles.Date.Render(a.clock.Format(dateLayout))
}

func (a App) renderSearchBar() string {
	if a.mode == ModeSearch {
		return a.searchInput.View()
	}
	if term := a.ctrl.Search(); term != "" {
		return a.styles.SearchBar.Render("/ " + term)
	}
	return ""
}

// renderGrid lays the folder cards out in rows, scrolled so the selected
// card stays visible.
func (a App) renderGrid(folders []model.Folder) string {
	cfg := a.layoutConfig.Grid
	grid := layout.CalculateGrid(a.width, cfg)
	totalRows := layout.RowCount(len(folders), grid.Columns)
	visibleRows := layout.CalculateVisibleRows(a.height, cfg)
	selectedRow := a.cursor.Folder / grid.Columns
	offset := layout.CalculateViewportOffset(selectedRow, totalRows, visibleRows)

	var rows []string
	for r := offset; r < totalRows && r < offset+visibleRows; r++ {
		var cards []string
		for c := 0; c < grid.Columns; c++ {
			idx := r*grid.Columns + c
			if idx >= len(folders) {
				break
			}
			if c > 0 {
				cards = append(cards, strings.Repeat(" ", cfg.ColumnGap))
			}
			cards = append(cards, a.renderCard(folders[idx], idx == a.cursor.Folder, grid.CardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCard renders one folder with its bookmark preview.
func (a App) renderCard(f model.Folder, active bool, width int) string {
	cfg := a.layoutConfig.Grid
	inner := layout.CalculateItemWidth(width, cfg)
	total := len(f.Bookmarks)

	title, _ := layout.TruncateKeepSuffix(f.Title, fmt.Sprintf(" (%d)", total), inner, a.layoutConfig.Text)
	lines := []string{a.styles.CardTitle.Width(inner).Render(title)}

	preview := model.PreviewBookmarks(f, cfg.PreviewLimit)
	if len(preview) == 0 {
		lines = append(lines, a.styles.Empty.Render(textEmptyFolder))
	}
	for i, b := range preview {
		lines = append(lines, a.renderBookmarkRow(b, active && i == a.cursor.Row, inner))
	}
	for len(lines) < cfg.PreviewLimit+1 {
		lines = append(lines, "")
	}

	footer := ""
	if total > cfg.PreviewLimit {
		more := fmt.Sprintf("view all %d (v)", total)
		footer = a.styles.More.Width(inner).Align(lipgloss.Right).Render(more)
	}
	lines = append(lines, footer)

	style := a.styles.Card
	if active {
		style = a.styles.CardActive
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (a App) renderBookmarkRow(b model.Bookmark, selected bool, maxWidth int) string {
	title := b.Title
	if title == "" {
		title = b.URL
	}
	text, _ := layout.TruncateText(title, maxWidth-2, a.layoutConfig.Text)
	if selected {
		return a.styles.ItemSelected.Width(maxWidth).Render("› " + text)
	}
	return a.styles.Item.Render("  " + text)
}

// renderFooter renders the action message line and the hints.
func (a App) renderFooter() string {
	return a.renderMessageLine() + "\n" + a.renderHints(a.getContextualHints())
}

// renderMessageLine renders the current action message, or an empty line.
func (a App) renderMessageLine() string {
	msg := a.ctrl.Messages().Current(a.clock)
	if msg == nil {
		return ""
	}
	if msg.Type == model.MessageError {
		return a.styles.Failure.Render("✗ " + msg.Text)
	}
	return a.styles.Success.Render("✓ " + msg.Text)
}

// renderModal renders the active overlay centered on screen.
func (a App) renderModal() string {
	mcfg := a.layoutConfig.Modal
	percent := mcfg.DefaultWidthPercent
	if a.mode == ModeDetail {
		percent = mcfg.LargeWidthPercent
	}
	modalWidth := layout.CalculateModalWidth(a.width, percent, mcfg)
	inner := max(1, modalWidth-6) // border (2) + padding (4)

	var body string
	switch a.mode {
	case ModeDetail:
		body = a.renderDetail(inner)
	case ModeEdit:
		body = a.renderEdit()
	case ModeConfirmDelete:
		body = a.renderConfirm(inner)
	case ModeThemes:
		body = a.renderThemes()
	}

	if msg := a.renderMessageLine(); msg != "" {
		body += "\n\n" + msg
	}

	box := a.styles.Modal.Width(modalWidth - 2).Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a App) renderDetail(inner int) string {
	folder := a.ctrl.ActiveFolder()
	if folder == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.styles.ModalTitle.Render(fmt.Sprintf("%s · %d bookmarks", folder.Title, len(folder.Bookmarks))))
	b.WriteString("\n\n")

	if len(folder.Bookmarks) == 0 {
		b.WriteString(a.styles.Empty.Render(textEmptyFolder))
	} else {
		maxVisible := layout.CalculateDetailHeight(a.height, a.layoutConfig.Modal)
		start, end := layout.CalculateVisibleListItems(maxVisible, a.detailIdx, len(folder.Bookmarks))
		for i := start; i < end; i++ {
			bm := folder.Bookmarks[i]
			b.WriteString(a.renderDetailRow(bm, i == a.detailIdx, inner))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(a.renderHintsInline(detailHints()))
	return b.String()
}

func (a App) renderDetailRow(bm model.Bookmark, selected bool, maxWidth int) string {
	titleWidth := maxWidth * 2 / 5
	title, _ := layout.TruncateText(bm.Title, titleWidth, a.layoutConfig.Text)
	url, _ := layout.TruncateText(bm.URL, maxWidth-titleWidth-4, a.layoutConfig.Text)
	row := fmt.Sprintf("%-*s  %s", titleWidth, title, a.styles.URL.Render(url))
	if selected {
		return a.styles.ItemSelected.Render("› ") + row
	}
	return "  " + row
}

func (a App) renderEdit() string {
	var b strings.Builder
	b.WriteString(a.styles.ModalTitle.Render("Edit Bookmark"))
	b.WriteString("\n\n")
	b.WriteString("Title:\n")
	b.WriteString(a.form.TitleInput.View())
	b.WriteString("\n\n")
	b.WriteString("URL:\n")
	b.WriteString(a.form.URLInput.View())
	b.WriteString("\n\n")

	switch a.ctrl.EditState() {
	case controller.OpPending:
		b.WriteString(a.styles.HintDesc.Render("Saving..."))
		b.WriteString("\n\n")
	case controller.OpFailed:
		b.WriteString(a.styles.Error.Render("Save failed. Press Enter to retry."))
		b.WriteString("\n\n")
	}

	b.WriteString(a.renderHintsInline(editHints()))
	return b.String()
}

func (a App) renderConfirm(inner int) string {
	confirm := a.ctrl.Confirming()
	if confirm == nil {
		return ""
	}

	name, _ := layout.TruncateText(confirm.Title, inner-2, a.layoutConfig.Text)

	var b strings.Builder
	b.WriteString(a.styles.ModalTitle.Render("Delete Bookmark?"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%q", name))
	b.WriteString("\n\n")
	b.WriteString(a.styles.HintDesc.Render(textCannotUndo))
	b.WriteString("\n\n")

	switch a.ctrl.DeleteState() {
	case controller.OpPending:
		b.WriteString(a.styles.HintDesc.Render("Deleting..."))
		b.WriteString("\n\n")
	case controller.OpFailed:
		b.WriteString(a.styles.Error.Render("Delete failed. Press Enter to retry."))
		b.WriteString("\n\n")
	}

	b.WriteString(a.renderHintsInline(confirmHints()))
	return b.String()
}

func (a App) renderThemes() string {
	current := a.themes.Current()

	var b strings.Builder
	b.WriteString(a.styles.ModalTitle.Render("Theme"))
	b.WriteString("\n\n")

	for i, t := range a.themes.Registry().All() {
		marker := "  "
		if i == a.themeIdx {
			marker = "› "
		}
		name := t.Name
		if t.ID == current.ID {
			name += " ✓"
		}
		line := marker + swatch(t.Primary) + swatch(t.Gradient.To) + swatch(t.Background.From) + " " + name
		if i == a.themeIdx {
			line = a.styles.ItemSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if a.bg != nil {
		b.WriteString("\n")
		b.WriteString(a.renderBackgroundStatus())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderHintsInline(themeHints()))
	return b.String()
}

func (a App) renderBackgroundStatus() string {
	status := "off"
	switch a.bg.State() {
	case background.StateEmpty:
		status = "on (no image)"
	case background.StateLoading:
		status = "on (loading...)"
	case background.StateReady:
		status = "on"
	}
	return "Background image: " + status
}
