package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar: "j/k:move /:search q:quit"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Action []Hint
	Edit   []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the bottom bar hints for the grid screen.
// Modals carry their own inline hints.
func (a App) getContextualHints() HintSet {
	if a.mode == ModeSearch {
		return HintSet{
			Nav:    []Hint{{Key: "type", Desc: "filter"}},
			Action: []Hint{{Key: "Enter", Desc: "apply"}},
			System: []Hint{{Key: "Esc", Desc: "clear"}},
		}
	}

	hints := HintSet{
		Nav: []Hint{
			{Key: "hjkl", Desc: "move"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "v", Desc: "all"},
			{Key: "/", Desc: "search"},
			{Key: "y", Desc: "yank"},
		},
		Edit: []Hint{
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "t", Desc: "theme"},
			{Key: "b", Desc: "bg"},
			{Key: "q", Desc: "quit"},
		},
	}
	if a.ctrl.Search() != "" {
		hints.System = append([]Hint{{Key: "Esc", Desc: "clear search"}}, hints.System...)
	}
	return hints
}

func detailHints() []Hint {
	return []Hint{
		{Key: "Enter", Desc: "open"},
		{Key: "e", Desc: "edit"},
		{Key: "d", Desc: "delete"},
		{Key: "y", Desc: "yank"},
		{Key: "Esc", Desc: "close"},
	}
}

func editHints() []Hint {
	return []Hint{
		{Key: "Tab", Desc: "next"},
		{Key: "Enter", Desc: "save"},
		{Key: "Esc", Desc: "cancel"},
	}
}

func confirmHints() []Hint {
	return []Hint{
		{Key: "Enter/y", Desc: "delete"},
		{Key: "Esc/n", Desc: "cancel"},
	}
}

func themeHints() []Hint {
	return []Hint{
		{Key: "j/k", Desc: "move"},
		{Key: "Enter", Desc: "apply"},
		{Key: "b", Desc: "background"},
		{Key: "B", Desc: "new image"},
		{Key: "Esc", Desc: "close"},
	}
}
