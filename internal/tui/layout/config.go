package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Grid  GridConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// GridConfig holds card grid configuration.
type GridConfig struct {
	// AppPadding is subtracted from terminal width (left 2 + right 2).
	AppPadding int

	// MinCardWidth is the narrowest a card may get before a column is dropped.
	MinCardWidth int

	// MaxColumns caps the number of card columns on wide terminals.
	MaxColumns int

	// ColumnGap is the space between two cards.
	ColumnGap int

	// PreviewLimit is how many bookmarks a card lists.
	PreviewLimit int

	// CardChrome is the card height without its bookmark rows:
	// borders (2) + title (1) + footer line (1) = 4
	CardChrome int

	// HeightReduction is subtracted from terminal height for the grid.
	// Accounts for: app padding (1) + clock (1) + date (1) + search (1) + gap (1) + footer (2) = 7
	HeightReduction int

	// ContentPadding is subtracted from card width for row rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// LargeWidthPercent is used by the folder detail modal.
	LargeWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// DetailHeightReduction is subtracted from terminal height for the
	// detail list: borders (2) + padding (2) + title (2) + hints (2) = 8
	DetailHeightReduction int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	URLCharLimit    int
	SearchCharLimit int

	StandardWidth int // title, URL
	SearchWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Grid: GridConfig{
			AppPadding:      4,
			MinCardWidth:    30,
			MaxColumns:      4,
			ColumnGap:       1,
			PreviewLimit:    5,
			CardChrome:      4,
			HeightReduction: 7,
			ContentPadding:  4,
		},
		Modal: ModalConfig{
			DefaultWidthPercent:   40,
			LargeWidthPercent:     60,
			MinWidth:              50,
			MaxWidth:              90,
			DetailHeightReduction: 8,
		},
		Input: InputConfig{
			TitleCharLimit:  200,
			URLCharLimit:    2000,
			SearchCharLimit: 100,
			StandardWidth:   40,
			SearchWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
