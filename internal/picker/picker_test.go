package picker

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/search"
	"github.com/nikbrunner/bmtab/internal/theme"
	"github.com/nikbrunner/bmtab/internal/tui/layout"
)

func testResults() []search.SearchResult {
	return []search.SearchResult{
		{Bookmark: &model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}, FolderTitle: "Dev"},
		{Bookmark: &model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}, FolderTitle: "Dev"},
	}
}

func newPicker(results []search.SearchResult) Picker {
	return New(results, "git", theme.DefaultRegistry().Default())
}

func press(p Picker, msg tea.KeyMsg) (Picker, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_InitialState(t *testing.T) {
	p := newPicker(testResults())

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_Navigate(t *testing.T) {
	p := newPicker(testResults())

	p, _ = press(p, runes("j"))
	if p.cursor != 1 {
		t.Errorf("j: expected cursor at 1, got %d", p.cursor)
	}

	// Bottom bound
	p, _ = press(p, tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("down at end: expected cursor at 1, got %d", p.cursor)
	}

	p, _ = press(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("k: expected cursor at 0, got %d", p.cursor)
	}

	// Top bound
	p, _ = press(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("up at start: expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	results := testResults()
	p := newPicker(results)
	p.cursor = 1

	p, cmd := press(p, tea.KeyMsg{Type: tea.KeyEnter})

	if !p.selected {
		t.Error("expected selected to be true after Enter")
	}
	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	if got := p.SelectedBookmark(); got != results[1].Bookmark {
		t.Errorf("expected GitLab, got %+v", got)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		t.Run(k.String(), func(t *testing.T) {
			p, cmd := press(newPicker(testResults()), k)

			if !p.Cancelled() {
				t.Error("expected cancelled")
			}
			if cmd == nil {
				t.Error("expected quit command after cancel")
			}
			if p.SelectedBookmark() != nil {
				t.Error("expected nil bookmark when cancelled")
			}
		})
	}
}

func TestPicker_EnterWithoutResultsCancels(t *testing.T) {
	p, _ := press(newPicker(nil), tea.KeyMsg{Type: tea.KeyEnter})

	if !p.Cancelled() {
		t.Error("enter with no results should cancel")
	}
}

func TestPicker_ViewShowsFolderAndURL(t *testing.T) {
	out := layout.StripANSI(newPicker(testResults()).View())

	for _, want := range []string{"Search: git (2 results)", "> GitHub  in Dev", "https://gitlab.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestPicker_ViewHighlightKeepsText(t *testing.T) {
	results := []search.SearchResult{
		{Bookmark: &model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}, MatchedIndexes: []int{0, 1, 2}},
	}
	out := layout.StripANSI(newPicker(results).View())

	if !strings.Contains(out, "GitHub") {
		t.Errorf("highlighting should not alter the title:\n%s", out)
	}
}

func TestPicker_ViewScrollsToCursor(t *testing.T) {
	var results []search.SearchResult
	for i := 0; i < 30; i++ {
		results = append(results, search.SearchResult{
			Bookmark: &model.Bookmark{ID: fmt.Sprint(i), Title: fmt.Sprintf("Result %02d", i), URL: "https://example.com"},
		})
	}
	p := newPicker(results)
	p.cursor = 29

	out := layout.StripANSI(p.View())

	if !strings.Contains(out, "Result 29") {
		t.Error("selected result should be visible")
	}
	if strings.Contains(out, "Result 00") {
		t.Error("first result should be scrolled out of view")
	}
}
