package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"sheetimport/domain/core"
	"sheetimport/domain/grid"
	"sheetimport/internal"

	"github.com/xuri/excelize/v2"
)

var readerLog = internal.DefaultLogger.With("Reader")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader turns delimited text or xlsx bytes into RawGrids
type Reader struct {
	config ReaderConfig
}

// NewReader creates a new tabular source reader
func NewReader(config ReaderConfig) *Reader {
	if config.MinDataRows < 0 {
		config.MinDataRows = 0
	}
	return &Reader{config: config}
}

// ReadGrid reads the first sheet of data in the given (or sniffed) format
func (r *Reader) ReadGrid(data []byte, format grid.Format) (*grid.RawGrid, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.NewUnreadableSourceError("empty input", nil)
	}

	if format == grid.FormatAuto || format == "" {
		format = SniffFormat(data, "")
	}

	switch format {
	case grid.FormatCSV:
		rows, err := r.readCSVRows(data)
		if err != nil {
			return nil, err
		}
		return buildGrid(rows, r.config)
	case grid.FormatXLSX:
		wb, err := r.ReadWorkbook(data)
		if err != nil {
			return nil, err
		}
		if len(wb.Sheets) == 0 {
			return nil, core.NewUnreadableSourceError("workbook has no sheets", nil)
		}
		return wb.Grid(wb.Sheets[0].Tab.ID)
	case grid.FormatUnsupported:
		return nil, core.NewUnreadableSourceError("unsupported file type, save it as .xlsx or .csv", nil)
	default:
		return nil, core.NewUnreadableSourceError(fmt.Sprintf("unsupported format %q", format), nil)
	}
}

// ReadWorkbook parses every sheet of an xlsx document. Tab ids are the
// zero-based sheet positions.
func (r *Reader) ReadWorkbook(data []byte) (*Workbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.NewUnreadableSourceError("failed to open workbook", err)
	}
	defer f.Close()

	var opts []excelize.Options
	if r.config.RawCellValues {
		opts = append(opts, excelize.Options{RawCellValue: true})
	}

	wb := &Workbook{Fingerprint: core.NewHash(data), config: r.config}
	for idx, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, opts...)
		if err != nil {
			return nil, core.NewUnreadableSourceError(fmt.Sprintf("failed to read sheet %q", name), err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{
			Tab:  grid.Tab{ID: idx, Name: name, NonEmptyRows: countDataRows(rows)},
			Rows: rows,
		})
	}

	readerLog.Debug("workbook %s opened in %.2fms (%d sheets)",
		wb.Fingerprint.Short(), float64(time.Since(startTime).Nanoseconds())/1e6, len(wb.Sheets))

	return wb, nil
}

// readCSVRows reads delimited text, sniffing the delimiter from the header line
func (r *Reader) readCSVRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, core.NewUnreadableSourceError("delimited text is not valid UTF-8", nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.NewUnreadableSourceError("malformed delimited text", err)
		}
		rows = append(rows, record)
	}

	readerLog.Debug("delimited text read (%d rows, delimiter %q)", len(rows), reader.Comma)
	return rows, nil
}

// buildGrid shapes raw rows and enforces the minimum data row count
func buildGrid(rows [][]string, config ReaderConfig) (*grid.RawGrid, error) {
	headerIdx := firstNonBlank(rows)
	if headerIdx < 0 {
		return nil, core.NewUnreadableSourceError("no header row", nil)
	}

	g := grid.New(rows[headerIdx:])
	if g.Width() == 0 {
		return nil, core.NewUnreadableSourceError("header row has no named columns", nil)
	}
	if g.DroppedCells > 0 {
		readerLog.Warn("dropping %d non-empty cells outside the %d named columns", g.DroppedCells, g.Width())
	}
	if len(g.Rows) < config.MinDataRows {
		return nil, core.NewUnreadableSourceError(
			fmt.Sprintf("need at least %d non-empty rows after the header, found %d", config.MinDataRows, len(g.Rows)), nil)
	}
	if config.MaxRows > 0 && len(g.Rows) > config.MaxRows {
		readerLog.Warn("truncating %d rows to %d", len(g.Rows), config.MaxRows)
		g.Rows = g.Rows[:config.MaxRows]
	}
	return g, nil
}

func firstNonBlank(rows [][]string) int {
	for i, row := range rows {
		if !grid.IsBlankRow(row) {
			return i
		}
	}
	return -1
}

// countDataRows counts non-empty rows after the first non-empty (header) row
func countDataRows(rows [][]string) int {
	headerIdx := firstNonBlank(rows)
	if headerIdx < 0 {
		return 0
	}
	count := 0
	for _, row := range rows[headerIdx+1:] {
		if !grid.IsBlankRow(row) {
			count++
		}
	}
	return count
}

// sniffDelimiter picks the most frequent of , ; and tab outside quotes on the first line
func sniffDelimiter(data []byte) rune {
	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, b := range data {
		if b == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if b == '\n' || b == '\r' {
			break
		}
		if _, ok := counts[rune(b)]; ok {
			counts[rune(b)]++
		}
	}

	best := ','
	for _, candidate := range []rune{';', '\t'} {
		if counts[candidate] > counts[best] {
			best = candidate
		}
	}
	return best
}
