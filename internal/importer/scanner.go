package importer

import (
	"iter"

	"github.com/cleared-dev/holdings/internal/workbook"
)

// TableScanner finds an account sheet's transaction table and yields its rows.
type TableScanner struct {
	Sentinel string
	Limit    int
	Offset   int
	Width    int
}

// Locate searches column A for the sentinel text and returns the first data
// row. ok is false when the sentinel does not appear within Limit rows.
func (s TableScanner) Locate(sheet *workbook.Sheet) (start int, ok bool) {
	for row := range min(s.Limit, sheet.NumRows()) {
		if t, isText := sheet.Cell(row, 0).(workbook.Text); isText && string(t) == s.Sentinel {
			return row + s.Offset, true
		}
	}
	return 0, false
}

// Rows yields (row index, cells) from start onwards. A row is yielded only
// while the row after it has a non-empty first cell, so the table's trailing
// totals row is never produced.
func (s TableScanner) Rows(sheet *workbook.Sheet, start int) iter.Seq2[int, []workbook.Cell] {
	return func(yield func(int, []workbook.Cell) bool) {
		for row := start; !workbook.IsEmpty(sheet.Cell(row+1, 0)); row++ {
			if !yield(row, sheet.Row(row, s.Width)) {
				return
			}
		}
	}
}
