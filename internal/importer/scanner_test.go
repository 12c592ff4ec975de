package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/holdings/internal/workbook"
)

// sheetWith builds a sheet from sparse rows keyed by zero-based index.
func sheetWith(name string, rows map[int][]workbook.Cell) *workbook.Sheet {
	last := -1
	for r := range rows {
		last = max(last, r)
	}
	grid := make([][]workbook.Cell, last+1)
	for r, cells := range rows {
		grid[r] = cells
	}
	return workbook.NewSheet(name, grid)
}

func collect(s TableScanner, sheet *workbook.Sheet) []int {
	start, ok := s.Locate(sheet)
	if !ok {
		return nil
	}
	var rows []int
	for row := range s.Rows(sheet, start) {
		rows = append(rows, row)
	}
	return rows
}

func wallDate(year int, month time.Month, day, hour, min int) workbook.DateTime {
	return workbook.DateTime{Wall: time.Date(year, month, day, hour, min, 0, 0, time.UTC)}
}

func TestScanner_YieldsRowsBeforeTotals(t *testing.T) {
	sheet := sheetWith("Main (VG1)", map[int][]workbook.Cell{
		10: {workbook.Text("Investment Transactions")},
		12: {workbook.Text("Date"), workbook.Text("InvestmentName")},
		13: {wallDate(2024, 3, 1, 0, 0)},
		14: {wallDate(2024, 3, 2, 0, 0)},
		15: {workbook.Text("Total")},
	})
	assert.Equal(t, []int{13, 14}, collect(VanguardUK.Scanner(), sheet))

	for _, cells := range VanguardUK.Scanner().Rows(sheet, 13) {
		assert.Len(t, cells, 6)
	}
}

func TestScanner_SingleRowThenTotals(t *testing.T) {
	sheet := sheetWith("Main (VG1)", map[int][]workbook.Cell{
		0: {workbook.Text("Investment Transactions")},
		3: {wallDate(2024, 3, 1, 0, 0)},
		4: {workbook.Text("Total")},
	})
	assert.Equal(t, []int{3}, collect(VanguardUK.Scanner(), sheet))
}

func TestScanner_EmptyFirstRowYieldedWhenSuccessorPresent(t *testing.T) {
	sheet := sheetWith("Main (VG1)", map[int][]workbook.Cell{
		0: {workbook.Text("Investment Transactions")},
		4: {workbook.Text("Total")},
	})
	assert.Equal(t, []int{3}, collect(VanguardUK.Scanner(), sheet))
}

func TestScanner_NoRowsAfterSentinel(t *testing.T) {
	sheet := sheetWith("Main (VG1)", map[int][]workbook.Cell{
		0: {workbook.Text("Investment Transactions")},
	})
	assert.Empty(t, collect(VanguardUK.Scanner(), sheet))
}

func TestScanner_Locate(t *testing.T) {
	s := VanguardUK.Scanner()
	tests := []struct {
		name  string
		rows  map[int][]workbook.Cell
		start int
		ok    bool
	}{
		{"last searched row", map[int][]workbook.Cell{999: {workbook.Text("Investment Transactions")}}, 1002, true},
		{"beyond search limit", map[int][]workbook.Cell{1000: {workbook.Text("Investment Transactions")}}, 0, false},
		{"first match wins", map[int][]workbook.Cell{
			2: {workbook.Text("Investment Transactions")},
			7: {workbook.Text("Investment Transactions")},
		}, 5, true},
		{"not in column A", map[int][]workbook.Cell{2: {workbook.Empty{}, workbook.Text("Investment Transactions")}}, 0, false},
		{"not exact", map[int][]workbook.Cell{2: {workbook.Text("Investment Transactions ")}}, 0, false},
		{"not text", map[int][]workbook.Cell{2: {workbook.Number(1)}}, 0, false},
		{"empty sheet", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := s.Locate(sheetWith("S", tt.rows))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.start, start)
		})
	}
}

func TestScanner_StopsWhenConsumerStops(t *testing.T) {
	rows := map[int][]workbook.Cell{0: {workbook.Text("Investment Transactions")}}
	for r := 3; r < 10; r++ {
		rows[r] = []workbook.Cell{workbook.Text("x")}
	}
	var seen []int
	for row := range VanguardUK.Scanner().Rows(sheetWith("S", rows), 3) {
		seen = append(seen, row)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{3, 4}, seen)
}
