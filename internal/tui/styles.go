package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmtab/internal/theme"
)

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Clock        lipgloss.Style
	Date         lipgloss.Style
	SearchBar    lipgloss.Style
	Card         lipgloss.Style
	CardActive   lipgloss.Style
	CardTitle    lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	URL          lipgloss.Style
	More         lipgloss.Style // "view all N" line under a card
	Empty        lipgloss.Style
	Error        lipgloss.Style
	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	Success      lipgloss.Style
	Failure      lipgloss.Style

	theme theme.Theme
}

// NewStyles derives the style set from a theme.
func NewStyles(t theme.Theme) Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#808080"}
	border := lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#505050"}
	white := lipgloss.Color("#FFFFFF")

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Clock: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		Date: lipgloss.NewStyle().
			Foreground(t.TextSecondary),

		SearchBar: lipgloss.NewStyle().
			Foreground(subtle),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		CardActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		CardTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Background(t.Gradient.From),

		Item: lipgloss.NewStyle(),

		ItemSelected: lipgloss.NewStyle().
			Background(t.Secondary).
			Foreground(t.TextPrimary),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		More: lipgloss.NewStyle().
			Foreground(t.TextSecondary),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(1, 2),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Background(t.Gradient.To).
			Padding(0, 1),

		HintKey: lipgloss.NewStyle().
			Foreground(t.Primary),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true),

		Failure: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true),

		theme: t,
	}
}

// Theme returns the theme the styles were built from.
func (s Styles) Theme() theme.Theme {
	return s.theme
}

// swatch renders a small color sample for the theme selector.
func swatch(c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render("██")
}
