package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/search"
	"github.com/nikbrunner/bmtab/internal/theme"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

// rowsPerResult is the number of lines one result takes (title, URL).
const rowsPerResult = 2

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up", "ctrl+p")),
		Down:   key.NewBinding(key.WithKeys("j", "down", "ctrl+n")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
	}
}

type styles struct {
	header   lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
	match    lipgloss.Style
	folder   lipgloss.Style
	url      lipgloss.Style
	footer   lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#808080"}
	return styles{
		header:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		selected: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		normal:   lipgloss.NewStyle(),
		match:    lipgloss.NewStyle().Foreground(t.Gradient.To).Underline(true),
		folder:   lipgloss.NewStyle().Foreground(t.TextSecondary),
		url:      lipgloss.NewStyle().Foreground(subtle).Italic(true),
		footer:   lipgloss.NewStyle().Foreground(subtle),
	}
}

// Picker is a small TUI for choosing one of several fuzzy search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int

	keys   keyMap
	styles styles
	text   layout.TextConfig
}

// New creates a Picker over results, styled with t.
func New(results []search.SearchResult, query string, t theme.Theme) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
		keys:    defaultKeyMap(),
		styles:  newStyles(t),
		text:    layout.DefaultConfig().Text,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Select):
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.header.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	// header (2) + blank line and footer (2)
	maxVisible := max(1, (p.height-4)/rowsPerResult)
	start, end := layout.CalculateVisibleListItems(maxVisible, p.cursor, len(p.results))
	lineWidth := max(10, p.width-3)

	for i := start; i < end; i++ {
		r := p.results[i]
		marker := "  "
		style := p.styles.normal
		if i == p.cursor {
			marker = "> "
			style = p.styles.selected
		}

		title := p.highlight(r.Bookmark.Title, r.MatchedIndexes, style)
		if r.FolderTitle != "" {
			title += p.styles.folder.Render("  in " + r.FolderTitle)
		}
		url, _ := layout.TruncateText(r.Bookmark.URL, lineWidth, p.text)

		b.WriteString(marker + layout.TruncateANSIAware(title, lineWidth, p.text) + "\n")
		b.WriteString("   " + p.styles.url.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(p.styles.footer.Render("j/k: move  Enter: open  q/Esc: cancel"))

	return b.String()
}

// highlight renders title with the fuzzy-matched runes emphasized.
func (p Picker) highlight(title string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(title)
	}

	hit := make(map[int]bool, len(matched))
	for _, idx := range matched {
		hit[idx] = true
	}

	var b strings.Builder
	for i, r := range title {
		if hit[i] {
			b.WriteString(p.styles.match.Inherit(base).Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the selected bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
