package excel

import (
	"path/filepath"
	"strings"

	"sheetimport/domain/grid"

	"github.com/gabriel-vasile/mimetype"
)

// SniffFormat chooses a reader format from the file extension, falling back
// to content detection. Zip containers are read as workbooks and text as
// delimited text; legacy binary spreadsheets and other blobs are unsupported.
func SniffFormat(data []byte, filename string) grid.Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return grid.FormatCSV
	case ".xlsx", ".xlsm":
		return grid.FormatXLSX
	case ".xls", ".ods", ".numbers":
		return grid.FormatUnsupported
	}

	mt := mimetype.Detect(data)
	switch {
	case isSpreadsheetBinary(mt):
		return grid.FormatXLSX
	case isText(mt):
		return grid.FormatCSV
	}
	return grid.FormatUnsupported
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func isSpreadsheetBinary(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") || m.Is("application/zip") {
			return true
		}
	}
	return false
}

// IsHTML reports whether a payload is an HTML document rather than tabular data
func IsHTML(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/html") {
			return true
		}
	}
	head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
