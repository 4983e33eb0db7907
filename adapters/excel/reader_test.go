package excel

import (
	"testing"

	"sheetimport/domain/core"
	"sheetimport/domain/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes sheets (name -> rows) into an in-memory xlsx
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadGridCSV(t *testing.T) {
	reader := NewReader(DefaultReaderConfig())

	tests := []struct {
		name    string
		input   string
		headers []string
		rows    [][]string
	}{
		{
			name:    "comma",
			input:   "Title,Status\nA,todo\nB\n",
			headers: []string{"Title", "Status"},
			rows:    [][]string{{"A", "todo"}, {"B", ""}},
		},
		{
			name:    "semicolon with BOM and blank rows",
			input:   "\xef\xbb\xbfTâche;Statut;Échéance\n\n\"Rédiger; relire\";terminé;12/03/2024\n;;\nTester;en cours;\n",
			headers: []string{"Tâche", "Statut", "Échéance"},
			rows:    [][]string{{"Rédiger; relire", "terminé", "12/03/2024"}, {"Tester", "en cours", ""}},
		},
		{
			name:    "tab",
			input:   "Title\tHours\nA\t1,5\nB\t2\n",
			headers: []string{"Title", "Hours"},
			rows:    [][]string{{"A", "1,5"}, {"B", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := reader.ReadGrid([]byte(tt.input), grid.FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tt.headers, g.Headers)
			assert.Equal(t, tt.rows, g.Rows)
		})
	}
}

func TestReadGridTooFewRows(t *testing.T) {
	reader := NewReader(DefaultReaderConfig())

	for _, input := range []string{"", "Title\n", "Title\nonly one\n\n", "\n\n"} {
		_, err := reader.ReadGrid([]byte(input), grid.FormatCSV)
		assert.ErrorIs(t, err, core.ErrUnreadableSource, "input %q", input)
	}

	lenient := NewReader(ReaderConfig{MinDataRows: 1})
	g, err := lenient.ReadGrid([]byte("Title\nonly one\n"), grid.FormatCSV)
	require.NoError(t, err)
	assert.Len(t, g.Rows, 1)
}

func TestReadGridCountsCellsOutsideNamedColumns(t *testing.T) {
	reader := NewReader(ReaderConfig{MinDataRows: 1})
	g, err := reader.ReadGrid([]byte("Title,Status,\nWrite,todo,stray\nShip,done,\n"), grid.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Status"}, g.Headers)
	assert.Equal(t, 1, g.DroppedCells)
}

func TestReadGridMaxRows(t *testing.T) {
	reader := NewReader(ReaderConfig{MinDataRows: 1, MaxRows: 2})
	g, err := reader.ReadGrid([]byte("Title\na\nb\nc\n"), grid.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, g.Rows)
}

func TestReadGridXLSX(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Tasks": {
			{"Title", "Status", "Due"},
			{"Write spec", "done", 42000},
			{"Review", "todo"},
			{nil, nil, nil},
			{"Ship", "todo", 45000},
		},
	}, []string{"Tasks"})

	reader := NewReader(DefaultReaderConfig())
	g, err := reader.ReadGrid(data, grid.FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "Status", "Due"}, g.Headers)
	require.Len(t, g.Rows, 3)
	assert.Equal(t, []string{"Write spec", "done", "42000"}, g.Rows[0])
	assert.Equal(t, []string{"Review", "todo", ""}, g.Rows[1])
}

func TestReadWorkbookTabs(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Backlog": {{"Title"}, {"a"}, {"b"}, {"c"}},
		"Notes":   {{"Title"}, {"x"}},
		"Empty":   {},
	}, []string{"Backlog", "Notes", "Empty"})

	reader := NewReader(DefaultReaderConfig())
	wb, err := reader.ReadWorkbook(data)
	require.NoError(t, err)

	assert.Equal(t, []grid.Tab{
		{ID: 0, Name: "Backlog", NonEmptyRows: 3},
		{ID: 1, Name: "Notes", NonEmptyRows: 1},
		{ID: 2, Name: "Empty", NonEmptyRows: 0},
	}, wb.Tabs())
	assert.False(t, wb.Fingerprint.IsEmpty())

	g, err := wb.Grid(0)
	require.NoError(t, err)
	assert.Len(t, g.Rows, 3)

	_, err = wb.GridByName("Notes")
	assert.ErrorIs(t, err, core.ErrUnreadableSource)

	_, err = wb.Grid(9)
	assert.ErrorIs(t, err, core.ErrTabNotFound)
}

func TestReadWorkbookRejectsGarbage(t *testing.T) {
	reader := NewReader(DefaultReaderConfig())
	_, err := reader.ReadWorkbook([]byte("definitely not a zip"))
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestSniffFormat(t *testing.T) {
	xlsx := buildWorkbook(t, map[string][][]interface{}{"S": {{"Title"}}}, []string{"S"})

	assert.Equal(t, grid.FormatXLSX, SniffFormat(xlsx, ""))
	assert.Equal(t, grid.FormatXLSX, SniffFormat(nil, "tasks.XLSX"))
	assert.Equal(t, grid.FormatCSV, SniffFormat([]byte("a,b\n1,2\n"), ""))
	assert.Equal(t, grid.FormatCSV, SniffFormat(xlsx, "export.csv"))
	assert.Equal(t, grid.FormatUnsupported, SniffFormat([]byte("a,b\n1,2\n"), "legacy.xls"))
	assert.Equal(t, grid.FormatUnsupported, SniffFormat(legacyWorkbook(), ""))
}

// legacyWorkbook returns an OLE compound document header followed by binary noise
func legacyWorkbook() []byte {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	for i := 0; i < 2048; i++ {
		data = append(data, byte(i*7%256))
	}
	return data
}

func TestReadGridRejectsBinary(t *testing.T) {
	reader := NewReader(DefaultReaderConfig())

	tests := []struct {
		name   string
		data   []byte
		format grid.Format
	}{
		{name: "legacy workbook sniffed", data: legacyWorkbook(), format: grid.FormatAuto},
		{name: "unsupported format", data: legacyWorkbook(), format: grid.FormatUnsupported},
		{name: "invalid utf-8 as csv", data: append([]byte("Title,Status\n"), 0xff, 0xfe, 0xfd, '\n'), format: grid.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadGrid(tt.data, tt.format)
			assert.ErrorIs(t, err, core.ErrUnreadableSource)
		})
	}
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML([]byte("<!DOCTYPE html><html><head><title>Sign in</title></head></html>")))
	assert.True(t, IsHTML([]byte("  <html lang=\"en\"><body>login</body></html>")))
	assert.False(t, IsHTML([]byte("Title,Status\nA,todo\n")))
}
