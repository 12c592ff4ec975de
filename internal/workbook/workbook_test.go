package workbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/workbook/workbooktest"
)

func TestSheetCell_OutOfRangeIsEmpty(t *testing.T) {
	s := NewSheet("S", [][]Cell{
		{Text("a"), nil},
		{},
	})
	assert.Equal(t, Text("a"), s.Cell(0, 0))
	assert.Equal(t, Empty{}, s.Cell(0, 1), "nil cell reads as Empty")
	assert.Equal(t, Empty{}, s.Cell(1, 0))
	assert.Equal(t, Empty{}, s.Cell(5, 5))
	assert.Equal(t, Empty{}, s.Cell(-1, 0))
	assert.Equal(t, 2, s.NumRows())
}

func TestSheetRow_Pads(t *testing.T) {
	s := NewSheet("S", [][]Cell{{Text("a"), Number(1)}})
	row := s.Row(0, 4)
	require.Len(t, row, 4)
	assert.Equal(t, Text("a"), row[0])
	assert.Equal(t, Number(1), row[1])
	assert.Equal(t, Empty{}, row[3])
}

func TestWorkbookSheetLookup(t *testing.T) {
	wb := New("export.Xls", NewSheet("Summary", nil), NewSheet("Main (VG1)", nil))

	names := []string{}
	for _, s := range wb.Sheets() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"Summary", "Main (VG1)"}, names)

	s, err := wb.Summary("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Summary", s.Name())

	_, err = wb.Sheet("Missing")
	var se *importerr.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "export.Xls", se.Loc.File)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestSniff(t *testing.T) {
	tests := []struct {
		data []byte
		want Format
	}{
		{oleMagic, FormatXLS},
		{append([]byte("PK\x03\x04"), 0, 0), FormatXLSX},
		{[]byte("id,name\n"), FormatUnknown},
		{nil, FormatUnknown},
	}
	for _, tt := range tests {
		got, err := Sniff(strings.NewReader(string(tt.data)))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestOpen_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.Xls")
	require.NoError(t, workbooktest.WriteXLSX(path,
		workbooktest.SheetSpec{Name: "Summary", Cells: map[string]any{
			"A1": "Report",
			"A2": time.Date(2024, time.March, 2, 8, 15, 0, 0, time.UTC),
		}},
		workbooktest.SheetSpec{Name: "Main (VG999)", Cells: map[string]any{
			"A1": "Investment Account",
			"B3": 2,
			"C3": 3.25,
			"D3": true,
		}},
	))

	wb, err := Open(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets(), 2)
	assert.Equal(t, path, wb.Path())

	summary, err := wb.Summary("Summary")
	require.NoError(t, err)
	assert.Equal(t, Text("Report"), summary.Cell(0, 0))
	dt, ok := summary.Cell(1, 0).(DateTime)
	require.True(t, ok, "A2 decoded as %s", Kind(summary.Cell(1, 0)))
	assert.True(t, dt.Wall.Equal(time.Date(2024, time.March, 2, 8, 15, 0, 0, time.UTC)), dt.String())

	main, err := wb.Sheet("Main (VG999)")
	require.NoError(t, err)
	assert.Equal(t, Text("Investment Account"), main.Cell(0, 0))
	assert.Equal(t, Empty{}, main.Cell(2, 0))
	assert.Equal(t, Number(2), main.Cell(2, 1))
	assert.Equal(t, Number(3.25), main.Cell(2, 2))
	assert.Equal(t, Bool(true), main.Cell(2, 3))
}

func TestOpen_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.Xls")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := Open(path)
	var se *importerr.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Loc.File)
}

func TestOpen_TruncatedXLS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.Xls")
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, oleMagic...), 0, 0, 0), 0o644))

	_, err := Open(path)
	var se *importerr.StructuralError
	assert.ErrorAs(t, err, &se)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.Xls"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_XLS(t *testing.T) {
	path := filepath.Join("testdata", "export.xls")

	wb, err := Open(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets(), 2)

	summary, err := wb.Summary("Summary")
	require.NoError(t, err)
	assert.Equal(t, Text("Valuation summary"), summary.Cell(0, 0))
	dt, ok := summary.Cell(1, 0).(DateTime)
	require.True(t, ok, "A2 decoded as %s", Kind(summary.Cell(1, 0)))
	assert.True(t, dt.Wall.Equal(time.Date(2024, time.March, 2, 8, 15, 0, 0, time.UTC)), dt.String())

	main, err := wb.Sheet("Main (VG999)")
	require.NoError(t, err)
	assert.Equal(t, Text("Investment Transactions"), main.Cell(10, 0))

	// A14 carries a workbook-defined dd/mm/yyyy hh:mm format.
	dt, ok = main.Cell(13, 0).(DateTime)
	require.True(t, ok, "A14 decoded as %s", Kind(main.Cell(13, 0)))
	assert.True(t, dt.Wall.Equal(time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)), dt.String())

	assert.Equal(t, Text("Vanguard FTSE All-World UCITS ETF (VWRL)"), main.Cell(13, 1))
	assert.Equal(t, Empty{}, main.Cell(13, 2))
	assert.Equal(t, Number(10), main.Cell(13, 3), "RK integer")
	assert.Equal(t, Number(5.25), main.Cell(13, 4))
	assert.Equal(t, Number(52.5), main.Cell(13, 5))
	assert.Equal(t, Empty{}, main.Cell(13, 6), "formula results are not decoded")
	assert.Equal(t, Text("Total"), main.Cell(14, 0))
	assert.Equal(t, Empty{}, main.Cell(15, 0))
}
