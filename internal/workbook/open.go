// Package workbook decodes broker spreadsheet exports into sheets of typed cells.
//
// Both legacy BIFF (.xls) and OOXML (.xlsx) files are supported; the format is
// sniffed from the file's leading bytes rather than trusted from its name.
package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cleared-dev/holdings/internal/importerr"
)

var (
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
)

// Format is a detected workbook container format.
type Format string

const (
	FormatXLS     Format = "xls"
	FormatXLSX    Format = "xlsx"
	FormatUnknown Format = "unknown"
)

// Sniff detects the container format from the first bytes of r.
func Sniff(r io.Reader) (Format, error) {
	head := make([]byte, len(oleMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	head = head[:n]
	switch {
	case bytes.HasPrefix(head, oleMagic):
		return FormatXLS, nil
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX, nil
	}
	return FormatUnknown, nil
}

// Open decodes the workbook at path into memory. The file is closed before
// Open returns. Undecodable files yield a *importerr.StructuralError.
func Open(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	format, err := Sniff(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("reading workbook header: %w", err)
	}

	var sheets []*Sheet
	switch format {
	case FormatXLS:
		sheets, err = decodeXLS(path)
	case FormatXLSX:
		sheets, err = decodeXLSX(path)
	default:
		err = fmt.Errorf("unrecognised file signature")
	}
	if err != nil {
		return nil, &importerr.StructuralError{
			Loc: importerr.At(path),
			Msg: fmt.Sprintf("cannot decode %s workbook", format),
			Err: err,
		}
	}
	return New(path, sheets...), nil
}
