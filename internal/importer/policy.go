package importer

import "fmt"

// RowErrorPolicy decides what a DataError on a transaction row does to the import.
type RowErrorPolicy string

const (
	// RowErrorsAbort stops the run at the first invalid row.
	RowErrorsAbort RowErrorPolicy = "abort"
	// RowErrorsSkip records the invalid row and carries on with the next one.
	RowErrorsSkip RowErrorPolicy = "skip"
)

// ParseRowErrorPolicy validates a policy name.
func ParseRowErrorPolicy(s string) (RowErrorPolicy, error) {
	switch p := RowErrorPolicy(s); p {
	case RowErrorsAbort, RowErrorsSkip:
		return p, nil
	case "":
		return RowErrorsAbort, nil
	}
	return "", fmt.Errorf("unknown row error policy %q (want abort or skip)", s)
}

// DuplicatePolicy decides what happens when two sheets resolve to the same account id.
type DuplicatePolicy string

const (
	// DuplicatesError fails the import.
	DuplicatesError DuplicatePolicy = "error"
	// DuplicatesFirst keeps the first sheet's binding.
	DuplicatesFirst DuplicatePolicy = "first"
	// DuplicatesLast rebinds the account to the later sheet.
	DuplicatesLast DuplicatePolicy = "last"
)

// ParseDuplicatePolicy validates a policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case DuplicatesError, DuplicatesFirst, DuplicatesLast:
		return p, nil
	case "":
		return DuplicatesError, nil
	}
	return "", fmt.Errorf("unknown duplicate account policy %q (want error, first or last)", s)
}
