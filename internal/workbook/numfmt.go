package workbook

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// isBuiltinDateFormat reports whether a built-in number format id renders a
// date or time (ECMA-376 18.8.30 plus the CJK ranges Excel emits).
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format code contains date
// or time tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	inQuote := false
	inBracket := false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// [h], [mm] and [ss] are elapsed-time tokens; anything else is a color or locale.
			end := strings.IndexByte(code[i:], ']')
			if end > 1 && strings.Trim(strings.ToLower(code[i+1:i+end]), "hms") == "" {
				return true
			}
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// serialToWall converts an Excel serial date to a naive wall-clock time.
func serialToWall(serial float64, date1904 bool) (time.Time, error) {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, err
	}
	// Excel stores milliseconds at best; drop float noise below a millisecond.
	return t.Round(time.Millisecond).UTC(), nil
}
