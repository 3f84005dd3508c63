// Package theme holds the fixed set of color themes and the persisted
// theme selection.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmtab/internal/prefs"
)

// Gradient is a two-stop color pair.
type Gradient struct {
	From lipgloss.Color
	To   lipgloss.Color
}

// Theme describes one color scheme.
type Theme struct {
	ID            string
	Name          string
	Primary       lipgloss.Color // accents, active borders
	Secondary     lipgloss.Color // light tint behind selected items
	Gradient      Gradient       // header and card title bar
	Background    Gradient       // page backdrop when no image is set
	HoverBg       lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
}

// Registry is an immutable, ordered list of themes.
type Registry struct {
	themes []Theme
}

// NewRegistry builds a registry. The first theme is the default.
// It panics on an empty list or duplicate ids.
func NewRegistry(themes ...Theme) Registry {
	if len(themes) == 0 {
		panic("theme: empty registry")
	}
	seen := make(map[string]bool, len(themes))
	for _, t := range themes {
		if seen[t.ID] {
			panic("theme: duplicate id " + t.ID)
		}
		seen[t.ID] = true
	}
	return Registry{themes: append([]Theme(nil), themes...)}
}

// DefaultRegistry returns the built-in themes.
func DefaultRegistry() Registry {
	return NewRegistry(
		Theme{
			ID:            "teal",
			Name:          "Fresh Teal",
			Primary:       "#14B8A6",
			Secondary:     "#F0FDFA",
			Gradient:      Gradient{From: "#2DD4BF", To: "#10B981"},
			Background:    Gradient{From: "#F0FDFA", To: "#ECFDF5"},
			HoverBg:       "#F0FDF4",
			TextPrimary:   "#115E59",
			TextSecondary: "#0D9488",
		},
		Theme{
			ID:            "blue",
			Name:          "Sky Blue",
			Primary:       "#3B82F6",
			Secondary:     "#EFF6FF",
			Gradient:      Gradient{From: "#60A5FA", To: "#6366F1"},
			Background:    Gradient{From: "#EFF6FF", To: "#EEF2FF"},
			HoverBg:       "#EFF6FF",
			TextPrimary:   "#1E40AF",
			TextSecondary: "#2563EB",
		},
		Theme{
			ID:            "purple",
			Name:          "Dreamy Purple",
			Primary:       "#A855F7",
			Secondary:     "#FAF5FF",
			Gradient:      Gradient{From: "#C084FC", To: "#EC4899"},
			Background:    Gradient{From: "#FAF5FF", To: "#FDF2F8"},
			HoverBg:       "#FAF5FF",
			TextPrimary:   "#6B21A8",
			TextSecondary: "#9333EA",
		},
		Theme{
			ID:            "amber",
			Name:          "Warm Amber",
			Primary:       "#F59E0B",
			Secondary:     "#FFFBEB",
			Gradient:      Gradient{From: "#FBBF24", To: "#F97316"},
			Background:    Gradient{From: "#FFFBEB", To: "#FFF7ED"},
			HoverBg:       "#FFFBEB",
			TextPrimary:   "#92400E",
			TextSecondary: "#D97706",
		},
		Theme{
			ID:            "slate",
			Name:          "Elegant Slate",
			Primary:       "#64748B",
			Secondary:     "#F8FAFC",
			Gradient:      Gradient{From: "#94A3B8", To: "#6B7280"},
			Background:    Gradient{From: "#F8FAFC", To: "#F9FAFB"},
			HoverBg:       "#F8FAFC",
			TextPrimary:   "#1E293B",
			TextSecondary: "#475569",
		},
	)
}

// Default returns the first theme.
func (r Registry) Default() Theme {
	return r.themes[0]
}

// ByID looks up a theme.
func (r Registry) ByID(id string) (Theme, bool) {
	for _, t := range r.themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// All returns the themes in order. The slice is a copy.
func (r Registry) All() []Theme {
	return append([]Theme(nil), r.themes...)
}

// Len returns the number of themes.
func (r Registry) Len() int {
	return len(r.themes)
}

// IndexOf returns the position of id, or -1.
func (r Registry) IndexOf(id string) int {
	for i, t := range r.themes {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Selection tracks the active theme and persists changes.
type Selection struct {
	registry Registry
	store    prefs.Store
	current  Theme
}

// Load restores the saved theme. Missing or unknown ids fall back to the
// registry default.
func Load(reg Registry, store prefs.Store) *Selection {
	s := &Selection{registry: reg, store: store, current: reg.Default()}
	if id, ok := store.Get(prefs.KeyTheme); ok {
		if t, found := reg.ByID(id); found {
			s.current = t
		}
	}
	return s
}

// Current returns the active theme.
func (s *Selection) Current() Theme {
	return s.current
}

// Registry returns the registry the selection draws from.
func (s *Selection) Registry() Registry {
	return s.registry
}

// Select activates and persists the theme with the given id. Unknown ids
// are ignored and report false. A persistence failure still switches the
// active theme and is returned to the caller.
func (s *Selection) Select(id string) (bool, error) {
	t, ok := s.registry.ByID(id)
	if !ok {
		return false, nil
	}
	s.current = t
	return true, s.store.Set(prefs.KeyTheme, id)
}
