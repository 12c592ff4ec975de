// Package importerr defines the error taxonomy of the import engine.
//
// Every failure surfaced by the engine is one of IntegrityError,
// StructuralError, DataError or PersistenceError, each carrying enough
// location context (file, sheet, row, column, account) to diagnose the
// problem without re-running the import.
package importerr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate marks a store constraint violation on a unique key.
var ErrDuplicate = errors.New("duplicate key")

// Location pinpoints where in an import an error was raised.
// Row is zero-based; NoRow means "not row specific".
type Location struct {
	File    string
	Sheet   string
	Row     int
	Column  string
	Account string
}

// NoRow is the Row value of a Location that does not refer to a row.
const NoRow = -1

// At returns a Location for a file with no row set.
func At(file string) Location {
	return Location{File: file, Row: NoRow}
}

// String renders only the populated parts, e.g.
// `export.Xls: sheet "Main (VG1)": account VG1: row 14: column D`.
func (l Location) String() string {
	var parts []string
	if l.File != "" {
		parts = append(parts, l.File)
	}
	if l.Sheet != "" {
		parts = append(parts, fmt.Sprintf("sheet %q", l.Sheet))
	}
	if l.Account != "" {
		parts = append(parts, "account "+l.Account)
	}
	if l.Row >= 0 {
		// Spreadsheet rows are shown one-based, as the operator sees them.
		parts = append(parts, fmt.Sprintf("row %d", l.Row+1))
	}
	if l.Column != "" {
		parts = append(parts, "column "+l.Column)
	}
	return strings.Join(parts, ": ")
}

// merge fills empty fields of l from other.
func (l Location) merge(other Location) Location {
	if l.File == "" {
		l.File = other.File
	}
	if l.Sheet == "" {
		l.Sheet = other.Sheet
	}
	if l.Row < 0 && other.Row >= 0 {
		l.Row = other.Row
	}
	if l.Column == "" {
		l.Column = other.Column
	}
	if l.Account == "" {
		l.Account = other.Account
	}
	return l
}

func prefixed(kind string, loc Location, msg string) string {
	if s := loc.String(); s != "" {
		return kind + ": " + s + ": " + msg
	}
	return kind + ": " + msg
}

// IntegrityError reports a fingerprint mismatch or an unreadable import file.
type IntegrityError struct {
	Path     string
	Declared string
	Actual   string
	Err      error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity error: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("integrity error: %s: sha256 %s does not match manifest value %s", e.Path, e.Actual, e.Declared)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// StructuralError reports an expected sheet, cell or shape that is absent or
// holds the wrong kind of value.
type StructuralError struct {
	Loc Location
	Msg string
	Err error
}

// Structural builds a StructuralError without location; callers up the stack
// attach it with Locate.
func Structural(format string, args ...any) *StructuralError {
	return &StructuralError{Loc: Location{Row: NoRow}, Msg: fmt.Sprintf(format, args...)}
}

func (e *StructuralError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return prefixed("structural error", e.Loc, msg)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// DataError reports a well-formed cell whose content is semantically invalid.
type DataError struct {
	Loc Location
	Msg string
}

// Data builds a DataError without location.
func Data(format string, args ...any) *DataError {
	return &DataError{Loc: Location{Row: NoRow}, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string {
	return prefixed("data error", e.Loc, e.Msg)
}

// PersistenceError reports a store failure while writing a record.
type PersistenceError struct {
	Op  string
	Loc Location
	Err error
}

func (e *PersistenceError) Error() string {
	return prefixed("persistence error", e.Loc, fmt.Sprintf("%s: %v", e.Op, e.Err))
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// locatable is implemented by the taxonomy errors that carry a Location.
type locatable interface {
	error
	locate(loc Location)
}

func (e *StructuralError) locate(loc Location) { e.Loc = e.Loc.merge(loc) }
func (e *DataError) locate(loc Location) { e.Loc = e.Loc.merge(loc) }
func (e *PersistenceError) locate(loc Location) { e.Loc = e.Loc.merge(loc) }

// Locate attaches loc to err's location where err does not already carry it.
// Errors outside the taxonomy are returned unchanged.
//
// When the taxonomy error sits below fmt.Errorf wrappers, their messages were
// rendered before the location changed; the returned error re-renders them.
func Locate(err error, loc Location) error {
	if err == nil {
		return nil
	}
	var target locatable
	if !errors.As(err, &target) {
		return err
	}
	before := target.Error()
	target.locate(loc)
	if error(target) == err {
		return err
	}
	return &located{err: err, inner: target, rendered: before}
}

// located is err with the stale text of inner replaced by its current message.
type located struct {
	err      error
	inner    error
	rendered string
}

func (l *located) Error() string {
	return strings.Replace(l.err.Error(), l.rendered, l.inner.Error(), 1)
}

func (l *located) Unwrap() error { return l.err }

// IsDuplicate reports whether err is a unique-key violation from the store.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
