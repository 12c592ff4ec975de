package workbook

import (
	"fmt"

	"github.com/cleared-dev/holdings/internal/importerr"
)

// Coord addresses a cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// Name returns the A1-style reference, e.g. Coord{1, 0} -> "A2".
func (c Coord) Name() string {
	return ColumnName(c.Col) + fmt.Sprint(c.Row+1)
}

// ColumnName converts a zero-based column index to letters: 0 -> "A", 27 -> "AB".
func ColumnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

// Sheet is a named grid of typed cells. Rows may be ragged; missing cells read as Empty.
type Sheet struct {
	name  string
	cells [][]Cell
}

// NewSheet builds a sheet from rows of cells. nil cells are treated as Empty.
func NewSheet(name string, rows [][]Cell) *Sheet {
	return &Sheet{name: name, cells: rows}
}

// Name returns the sheet's tab name.
func (s *Sheet) Name() string { return s.name }

// NumRows returns the number of rows holding at least one decoded cell slot.
func (s *Sheet) NumRows() int { return len(s.cells) }

// Cell returns the cell at (row, col), or Empty when out of range.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.cells) || col < 0 || col >= len(s.cells[row]) {
		return Empty{}
	}
	if c := s.cells[row][col]; c != nil {
		return c
	}
	return Empty{}
}

// At returns the cell at coord.
func (s *Sheet) At(c Coord) Cell { return s.Cell(c.Row, c.Col) }

// Row returns width cells of row starting at column 0, padding with Empty.
func (s *Sheet) Row(row, width int) []Cell {
	out := make([]Cell, width)
	for col := range out {
		out[col] = s.Cell(row, col)
	}
	return out
}

// Workbook is a decoded spreadsheet file: its sheets in document order.
type Workbook struct {
	path   string
	sheets []*Sheet
	byName map[string]*Sheet
}

// New assembles a workbook from sheets. path is used only for error context.
func New(path string, sheets ...*Sheet) *Workbook {
	byName := make(map[string]*Sheet, len(sheets))
	for _, s := range sheets {
		byName[s.name] = s
	}
	return &Workbook{path: path, sheets: sheets, byName: byName}
}

// Path returns the file the workbook was decoded from.
func (w *Workbook) Path() string { return w.path }

// Sheets returns all sheets in document order.
func (w *Workbook) Sheets() []*Sheet { return w.sheets }

// Sheet returns the named sheet or a StructuralError if it is absent.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	s, ok := w.byName[name]
	if !ok {
		err := importerr.Structural("sheet %q not found", name)
		err.Loc.File = w.path
		return nil, err
	}
	return s, nil
}

// Summary returns the well-known workbook-level metadata sheet.
func (w *Workbook) Summary(name string) (*Sheet, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, fmt.Errorf("locating summary sheet: %w", err)
	}
	return s, nil
}
