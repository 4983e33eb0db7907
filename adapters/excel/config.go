package excel

// ReaderConfig holds configuration for tabular source reading
type ReaderConfig struct {
	// MinDataRows is the number of non-empty rows required after the header
	MinDataRows int `json:"min_data_rows"`
	// MaxRows caps the data rows kept per sheet, 0 for no cap
	MaxRows int `json:"max_rows"`
	// RawCellValues returns stored values (date serials) instead of display text
	RawCellValues bool `json:"raw_cell_values"`
}

// DefaultReaderConfig returns sensible defaults for spreadsheet reading
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MinDataRows: 2,
		MaxRows:     0,
	}
}
