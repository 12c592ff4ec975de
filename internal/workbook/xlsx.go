package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads every sheet of an OOXML workbook.
func decodeXLSX(path string) ([]*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	d := xlsxDecoder{f: f, date1904: date1904, dateStyles: make(map[int]bool)}
	var sheets []*Sheet
	for _, name := range f.GetSheetList() {
		s, err := d.sheet(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

type xlsxDecoder struct {
	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool // style index -> renders as date
}

func (d *xlsxDecoder) sheet(name string) (*Sheet, error) {
	rows, err := d.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	cells := make([][]Cell, len(rows))
	for r, row := range rows {
		cells[r] = make([]Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				cells[r][c] = Empty{}
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			cell, err := d.cell(name, ref, raw)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", ref, err)
			}
			cells[r][c] = cell
		}
	}
	return NewSheet(name, cells), nil
}

func (d *xlsxDecoder) cell(sheet, ref, raw string) (Cell, error) {
	typ, err := d.f.GetCellType(sheet, ref)
	if err != nil {
		return nil, fmt.Errorf("reading cell type: %w", err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return Text(raw), nil
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "TRUE")), nil
	case excelize.CellTypeError:
		return ErrorValue(raw), nil
	case excelize.CellTypeDate:
		t, err := time.Parse("2006-01-02T15:04:05", strings.TrimSuffix(raw, "Z"))
		if err != nil {
			return nil, fmt.Errorf("parsing ISO date %q: %w", raw, err)
		}
		return DateTime{Wall: t}, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// Untyped cells that are not numeric are plain strings.
			return Text(raw), nil
		}
		isDate, err := d.isDateStyled(sheet, ref)
		if err != nil {
			return nil, err
		}
		if !isDate {
			return Number(v), nil
		}
		wall, err := serialToWall(v, d.date1904)
		if err != nil {
			return nil, fmt.Errorf("converting date serial %v: %w", v, err)
		}
		return DateTime{Wall: wall}, nil
	default:
		return Text(raw), nil
	}
}

func (d *xlsxDecoder) isDateStyled(sheet, ref string) (bool, error) {
	idx, err := d.f.GetCellStyle(sheet, ref)
	if err != nil {
		return false, fmt.Errorf("reading cell style: %w", err)
	}
	if isDate, ok := d.dateStyles[idx]; ok {
		return isDate, nil
	}
	style, err := d.f.GetStyle(idx)
	if err != nil {
		return false, fmt.Errorf("reading style %d: %w", idx, err)
	}
	isDate := isBuiltinDateFormat(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.dateStyles[idx] = isDate
	return isDate, nil
}
