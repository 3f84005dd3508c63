package layout

// GridLayout holds calculated card grid dimensions.
type GridLayout struct {
	Columns   int
	CardWidth int
}

// CalculateGrid computes the column count and card width. Columns are
// added while each card can stay at least MinCardWidth wide.
func CalculateGrid(terminalWidth int, cfg GridConfig) GridLayout {
	available := terminalWidth - cfg.AppPadding
	if available < 1 {
		available = 1
	}

	columns := (available + cfg.ColumnGap) / (cfg.MinCardWidth + cfg.ColumnGap)
	if columns < 1 {
		columns = 1
	}
	if columns > cfg.MaxColumns {
		columns = cfg.MaxColumns
	}

	width := (available - cfg.ColumnGap*(columns-1)) / columns
	if width < 1 {
		width = 1
	}

	return GridLayout{
		Columns:   columns,
		CardWidth: width,
	}
}

// CardHeight is the rendered height of every card.
func CardHeight(cfg GridConfig) int {
	return cfg.CardChrome + cfg.PreviewLimit
}

// CalculateVisibleRows computes how many card rows fit. Returns at least 1.
func CalculateVisibleRows(terminalHeight int, cfg GridConfig) int {
	rows := (terminalHeight - cfg.HeightReduction) / CardHeight(cfg)
	if rows < 1 {
		return 1
	}
	return rows
}

// RowCount returns the number of grid rows needed for n cards.
func RowCount(n, columns int) int {
	if n <= 0 || columns <= 0 {
		return 0
	}
	return (n + columns - 1) / columns
}

// CalculateItemWidth computes the width available for row content in a card.
func CalculateItemWidth(cardWidth int, cfg GridConfig) int {
	width := cardWidth - cfg.ContentPadding
	if width < 1 {
		return 1
	}
	return width
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected row visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
