package workbook

import (
	"fmt"
	"strings"

	"github.com/shakinm/xlsReader/xls"
)

// xlsCell is the subset of the BIFF reader's cell interface the decoder uses.
type xlsCell interface {
	GetString() string
	GetFloat64() float64
	GetXFIndex() int
	GetType() string
}

// decodeXLS reads every sheet of a legacy BIFF workbook.
func decodeXLS(path string) (sheets []*Sheet, err error) {
	// The BIFF reader panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("malformed xls stream: %v", r)
		}
	}()

	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}

	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i, err)
		}

		// Rows may be sparse; GetRow yields an empty row for any gap.
		cells := make([][]Cell, 0, sheet.GetNumberRows())
		for r := 0; r < sheet.GetNumberRows(); r++ {
			row, _ := sheet.GetRow(r)
			cols := row.GetCols()
			decoded := make([]Cell, len(cols))
			for c, col := range cols {
				decoded[c] = decodeXLSCell(col, func(xf int) bool {
					rec := wb.GetXFbyIndex(xf)
					return xlsDateFormat(rec.GetFormatIndex(), func(idx int) string {
						format := wb.GetFormatByIndex(idx)
						return format.String()
					})
				})
			}
			cells = append(cells, decoded)
		}
		sheets = append(sheets, NewSheet(sheet.GetName(), cells))
	}
	return sheets, nil
}

// firstCustomFormat is the lowest number format index a workbook may define.
const firstCustomFormat = 164

// xlsDateFormat reports whether number format idx renders dates. Custom formats
// are classified by the format code that code returns for them.
func xlsDateFormat(idx int, code func(idx int) string) bool {
	if idx < firstCustomFormat {
		return isBuiltinDateFormat(idx)
	}
	return isDateFormatCode(code(idx))
}

// decodeXLSCell maps a BIFF record to the Cell union. isDate reports whether
// the cell's extended format renders numbers as dates.
func decodeXLSCell(c xlsCell, isDate func(xf int) bool) Cell {
	switch c.GetType() {
	case "*record.Blank", "*record.FakeBlank":
		return Empty{}
	case "*record.LabelSSt", "*record.LabelBIFF8", "*record.LabelBIFF5", "*record.Label":
		if s := c.GetString(); s != "" {
			return Text(s)
		}
		return Empty{}
	case "*record.Number", "*record.Rk", "*record.MulRk":
		v := c.GetFloat64()
		if isDate(c.GetXFIndex()) {
			if wall, err := serialToWall(v, false); err == nil {
				return DateTime{Wall: wall}
			}
		}
		return Number(v)
	case "*record.BoolErr":
		switch s := strings.ToUpper(c.GetString()); s {
		case "TRUE", "1":
			return Bool(true)
		case "FALSE", "0":
			return Bool(false)
		default:
			return ErrorValue(s)
		}
	default:
		if s := c.GetString(); s != "" {
			return Text(s)
		}
		return Empty{}
	}
}
