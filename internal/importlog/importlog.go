// Package importlog keeps the CSV history of import attempts.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Status values.
const (
	StatusImported = "imported"
	StatusFailed   = "failed"
	StatusDryRun   = "dry-run"
)

// Entry is one row in the import history.
type Entry struct {
	Timestamp    time.Time
	RunID        string
	File         string
	Fingerprint  string
	Platform     string
	Status       string
	Accounts     int
	Transactions int
	Skipped      int
	Error        string
}

// Header is the CSV header of the history file.
const Header = "timestamp,run_id,file,fingerprint,platform,status,accounts,transactions,skipped,error"

const (
	numFields       = 10
	colTimestamp    = 0
	colRunID        = 1
	colFile         = 2
	colFingerprint  = 3
	colPlatform     = 4
	colStatus       = 5
	colAccounts     = 6
	colTransactions = 7
	colSkipped      = 8
	colError        = 9
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colFingerprint] = e.Fingerprint
	row[colPlatform] = e.Platform
	row[colStatus] = e.Status
	row[colAccounts] = strconv.Itoa(e.Accounts)
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var counts [3]int
	for i, col := range []int{colAccounts, colTransactions, colSkipped} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp:    ts,
		RunID:        record[colRunID],
		File:         record[colFile],
		Fingerprint:  record[colFingerprint],
		Platform:     record[colPlatform],
		Status:       record[colStatus],
		Accounts:     counts[0],
		Transactions: counts[1],
		Skipped:      counts[2],
		Error:        record[colError],
	}, nil
}

// Append writes entries to the history file at path, creating it and its
// header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the history file at path.
// Returns nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import history CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Imported reports whether the history holds a successful import of fingerprint.
func Imported(entries []Entry, fingerprint string) bool {
	for _, e := range entries {
		if e.Fingerprint == fingerprint && e.Status == StatusImported {
			return true
		}
	}
	return false
}
