package grid

import (
	"strings"
)

// Format identifies how a tabular source is encoded
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	// FormatUnsupported marks binary content no reader understands
	FormatUnsupported Format = "unsupported"
)

// RawGrid is a uniform header + rows string matrix. Every row has exactly
// len(Headers) cells.
type RawGrid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	// DroppedCells counts non-empty cells beyond the last named column
	DroppedCells int `json:"-"`
}

// New builds a RawGrid from raw rows, the first being the header row. Short
// rows are right-padded, long rows truncated, blank rows dropped. Truncated
// non-empty cells are counted in DroppedCells.
func New(rows [][]string) *RawGrid {
	g := &RawGrid{}
	if len(rows) == 0 {
		return g
	}

	g.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		g.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	// Trailing unnamed columns carry no mapping target
	for len(g.Headers) > 0 && g.Headers[len(g.Headers)-1] == "" {
		g.Headers = g.Headers[:len(g.Headers)-1]
	}

	width := len(g.Headers)
	for _, row := range rows[1:] {
		if IsBlankRow(row) {
			continue
		}
		if len(row) > width {
			for _, cell := range row[width:] {
				if strings.TrimSpace(cell) != "" {
					g.DroppedCells++
				}
			}
		}
		cells := make([]string, width)
		copy(cells, row)
		if IsBlankRow(cells) {
			continue
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

// IsBlankRow reports whether every cell is empty or whitespace
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Width returns the column count
func (g *RawGrid) Width() int {
	return len(g.Headers)
}

// Cell returns the cell at row, col or "" when out of range
func (g *RawGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Tab describes one sheet of a multi-sheet document
type Tab struct {
	ID           int    `json:"tab_id"`
	Name         string `json:"name"`
	NonEmptyRows int    `json:"non_empty_row_count"`
}
