package terminal

const (
	fallbackRows = 24
	fallbackCols = 80
)

// Size is a terminal dimension in character cells.
type Size struct {
	Rows int
	Cols int
}

// ProbeSize queries t for its dimensions, falling back to 24x80 when the
// query fails or reports nonsense.
func ProbeSize(t Terminal) Size {
	cols, rows, err := t.Size()
	if err != nil || rows <= 0 || cols <= 0 {
		return Size{Rows: fallbackRows, Cols: fallbackCols}
	}
	return Size{Rows: rows, Cols: cols}
}
