package importer

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/model"
	"github.com/cleared-dev/holdings/internal/workbook"
)

// Transaction table columns.
const (
	colDate     = 0
	colName     = 1
	colQuantity = 3
	colPrice    = 4
	colCost     = 5
)

var tickerPattern = regexp.MustCompile(`^.* \(([A-Z]+)\)$`)

// DefaultTolerance is the largest accepted gap between the declared cost and
// price × quantity.
var DefaultTolerance = decimal.New(1, -4)

// RowParser turns one transaction table row into a Transaction.
type RowParser struct {
	Currency  string
	Location  *time.Location // wall clocks are read in this zone; nil means UTC
	Tolerance decimal.Decimal
}

// Parse validates and converts row. Errors carry the offending column; the
// caller attaches sheet and row.
func (p RowParser) Parse(row []workbook.Cell, importID, accountID string) (model.Transaction, error) {
	var txn model.Transaction
	if len(row) <= colCost {
		return txn, importerr.Structural("row has %d columns, want %d", len(row), colCost+1)
	}

	executed, err := p.executionTime(row[colDate])
	if err != nil {
		return txn, importerr.Locate(err, column(colDate))
	}

	name, ok := row[colName].(workbook.Text)
	if !ok {
		return txn, importerr.Locate(importerr.Structural("column B must be text, got %s", workbook.Kind(row[colName])), column(colName))
	}
	m := tickerPattern.FindStringSubmatch(string(name))
	if m == nil {
		return txn, importerr.Locate(importerr.Data("ticker symbol missing in %q", string(name)), column(colName))
	}

	quantity, err := number(row, colQuantity)
	if err != nil {
		return txn, err
	}
	price, err := number(row, colPrice)
	if err != nil {
		return txn, err
	}
	cost, err := number(row, colCost)
	if err != nil {
		return txn, err
	}

	txn = model.Transaction{
		ExecutionTime:  executed,
		TickerSymbol:   m[1],
		UnitQuantity:   quantity,
		CostPerUnit:    price,
		CurrencySymbol: p.Currency,
		AccountID:      accountID,
		ImportID:       importID,
	}

	tolerance := p.Tolerance
	if tolerance.IsZero() {
		tolerance = DefaultTolerance
	}
	if expected := txn.TotalCost(); cost.Sub(expected).Abs().GreaterThan(tolerance) {
		return model.Transaction{}, importerr.Locate(
			importerr.Data("cost %s does not match price %s × quantity %s = %s", cost, price, quantity, expected),
			column(colCost))
	}
	return txn, nil
}

func (p RowParser) executionTime(c workbook.Cell) (time.Time, error) {
	switch v := c.(type) {
	case workbook.DateTime:
		return WallToUTC(v.Wall, p.Location)
	default:
		return time.Time{}, importerr.Structural("column A must be date, got %s", workbook.Kind(c))
	}
}

func number(row []workbook.Cell, col int) (decimal.Decimal, error) {
	switch v := row[col].(type) {
	case workbook.Number:
		return decimal.NewFromFloat(float64(v)), nil
	default:
		err := importerr.Structural("column %s must be number, got %s", workbook.ColumnName(col), workbook.Kind(row[col]))
		if workbook.IsEmpty(row[col]) {
			// Legacy .xls formula cells carry no decoded value.
			err.Msg += " (formula cells in .xls exports are not evaluated)"
		}
		return decimal.Decimal{}, importerr.Locate(err, column(col))
	}
}

func column(col int) importerr.Location {
	return importerr.Location{Row: importerr.NoRow, Column: workbook.ColumnName(col)}
}

// WallToUTC interprets the wall-clock fields of wall in loc and returns the
// instant in UTC. A wall clock that loc skips or repeats is a StructuralError.
func WallToUTC(wall time.Time, loc *time.Location) (time.Time, error) {
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)
	if loc == nil || loc == time.UTC {
		return naive, nil
	}

	// Zone offsets are sampled a day either side; that covers every
	// offset change in the tz database.
	var found []time.Time
	for _, sample := range []time.Time{naive.Add(-24 * time.Hour), naive, naive.Add(24 * time.Hour)} {
		_, offset := sample.In(loc).Zone()
		candidate := naive.Add(-time.Duration(offset) * time.Second)
		if !sameWall(candidate.In(loc), naive) {
			continue
		}
		seen := false
		for _, f := range found {
			seen = seen || f.Equal(candidate)
		}
		if !seen {
			found = append(found, candidate)
		}
	}

	switch len(found) {
	case 1:
		return found[0].UTC(), nil
	case 0:
		return time.Time{}, importerr.Structural("ambiguous timezone conversion: %s does not exist in %s", naive.Format(time.DateTime), loc)
	default:
		return time.Time{}, importerr.Structural("ambiguous timezone conversion: %s occurs twice in %s", naive.Format(time.DateTime), loc)
	}
}

func sameWall(t, wall time.Time) bool {
	y1, mo1, d1 := t.Date()
	y2, mo2, d2 := wall.Date()
	h1, mi1, s1 := t.Clock()
	h2, mi2, s2 := wall.Clock()
	return y1 == y2 && mo1 == mo2 && d1 == d2 && h1 == h2 && mi1 == mi2 && s1 == s2 && t.Nanosecond() == wall.Nanosecond()
}
