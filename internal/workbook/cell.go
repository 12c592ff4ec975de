package workbook

import (
	"strconv"
	"time"
)

// Cell is the closed set of values a spreadsheet cell can hold: Empty, Text,
// Number, DateTime, Bool or ErrorValue. Extraction sites type-switch on it and
// must handle every variant, typically with an explicit default case.
type Cell interface {
	cell()
	String() string
}

// Empty is a blank or missing cell.
type Empty struct{}

// Text is a string cell.
type Text string

// Number is a numeric cell that is not formatted as a date.
type Number float64

// DateTime is a date-formatted cell. Workbooks carry no zone, so Wall holds
// the naive wall-clock reading with time.UTC as a placeholder location.
type DateTime struct {
	Wall time.Time
}

// Bool is a boolean cell.
type Bool bool

// ErrorValue is a cell holding a spreadsheet error such as "#DIV/0!".
type ErrorValue string

func (Empty) cell()      {}
func (Text) cell()       {}
func (Number) cell()     {}
func (DateTime) cell()   {}
func (Bool) cell()       {}
func (ErrorValue) cell() {}

func (Empty) String() string { return "" }

func (t Text) String() string { return string(t) }

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

func (d DateTime) String() string { return d.Wall.Format("2006-01-02 15:04:05") }

func (b Bool) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (e ErrorValue) String() string { return string(e) }

// IsEmpty reports whether c is the Empty variant (or nil).
func IsEmpty(c Cell) bool {
	switch c.(type) {
	case nil, Empty:
		return true
	default:
		return false
	}
}

// Kind names c's variant for error messages.
func Kind(c Cell) string {
	switch c.(type) {
	case nil, Empty:
		return "empty"
	case Text:
		return "text"
	case Number:
		return "number"
	case DateTime:
		return "date"
	case Bool:
		return "boolean"
	case ErrorValue:
		return "error"
	default:
		return "unknown"
	}
}
