package theme_test

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmtab/internal/prefs"
	"github.com/nikbrunner/bmtab/internal/theme"
)

func TestDefaultRegistry_Order(t *testing.T) {
	reg := theme.DefaultRegistry()

	var ids []string
	for _, th := range reg.All() {
		ids = append(ids, th.ID)
	}
	assert.DeepEqual(t, ids, []string{"teal", "blue", "purple", "amber", "slate"})
	assert.Equal(t, reg.Default().ID, "teal")
}

func TestRegistry_AllIsCopy(t *testing.T) {
	reg := theme.DefaultRegistry()
	all := reg.All()
	all[0].Name = "changed"

	assert.Equal(t, reg.Default().Name, "Fresh Teal")
}

func TestRegistry_ByID(t *testing.T) {
	reg := theme.DefaultRegistry()

	tests := []struct {
		id    string
		found bool
		name  string
	}{
		{"blue", true, "Sky Blue"},
		{"slate", true, "Elegant Slate"},
		{"neon", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			th, ok := reg.ByID(tt.id)
			assert.Equal(t, ok, tt.found)
			assert.Equal(t, th.Name, tt.name)
		})
	}
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		assert.Assert(t, recover() != nil, "expected panic")
	}()
	theme.NewRegistry(theme.Theme{ID: "a"}, theme.Theme{ID: "a"})
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	reg := theme.DefaultRegistry()

	store := prefs.NewMemory()
	assert.Equal(t, theme.Load(reg, store).Current().ID, "teal")

	assert.NilError(t, store.Set(prefs.KeyTheme, "neon"))
	assert.Equal(t, theme.Load(reg, store).Current().ID, "teal")

	assert.NilError(t, store.Set(prefs.KeyTheme, "amber"))
	assert.Equal(t, theme.Load(reg, store).Current().ID, "amber")
}

func TestSelection_SelectPersists(t *testing.T) {
	reg := theme.DefaultRegistry()
	store := prefs.NewMemory()
	sel := theme.Load(reg, store)

	ok, err := sel.Select("purple")
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, sel.Current().ID, "purple")

	saved, _ := store.Get(prefs.KeyTheme)
	assert.Equal(t, saved, "purple")

	// survives a restart
	assert.Equal(t, theme.Load(reg, store).Current().ID, "purple")
}

func TestSelection_SelectUnknown(t *testing.T) {
	store := prefs.NewMemory()
	sel := theme.Load(theme.DefaultRegistry(), store)

	ok, err := sel.Select("neon")
	assert.NilError(t, err)
	assert.Assert(t, !ok)
	assert.Equal(t, sel.Current().ID, "teal")

	_, saved := store.Get(prefs.KeyTheme)
	assert.Check(t, is.Equal(saved, false))
}
