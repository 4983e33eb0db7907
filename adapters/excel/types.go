package excel

import (
	"fmt"

	"sheetimport/domain/core"
	"sheetimport/domain/grid"
)

// Sheet is one parsed worksheet of a workbook
type Sheet struct {
	Tab  grid.Tab
	Rows [][]string
}

// Workbook is every sheet of a spreadsheet document, in document order
type Workbook struct {
	Sheets      []Sheet
	Fingerprint core.Hash
	config      ReaderConfig
}

// Tabs lists the sheets with their non-empty data row counts
func (w *Workbook) Tabs() []grid.Tab {
	tabs := make([]grid.Tab, len(w.Sheets))
	for i, s := range w.Sheets {
		tabs[i] = s.Tab
	}
	return tabs
}

// Grid returns the RawGrid of one tab, enforcing the minimum row count
func (w *Workbook) Grid(tabID int) (*grid.RawGrid, error) {
	for _, s := range w.Sheets {
		if s.Tab.ID == tabID {
			return buildGrid(s.Rows, w.config)
		}
	}
	return nil, fmt.Errorf("%w: %d", core.ErrTabNotFound, tabID)
}

// GridByName returns the RawGrid of the tab with the given name
func (w *Workbook) GridByName(name string) (*grid.RawGrid, error) {
	for _, s := range w.Sheets {
		if s.Tab.Name == name {
			return buildGrid(s.Rows, w.config)
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrTabNotFound, name)
}
