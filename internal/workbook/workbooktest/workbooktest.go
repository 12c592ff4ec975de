// Package workbooktest writes small OOXML workbooks for tests.
package workbooktest

import (
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
)

// SheetSpec describes one sheet: its tab name and values keyed by A1 reference.
// Values may be string, int, float64, bool or time.Time (written date-formatted).
type SheetSpec struct {
	Name  string
	Cells map[string]any
}

// WriteXLSX writes the sheets, in order, to path.
func WriteXLSX(path string, sheets ...SheetSpec) error {
	if len(sheets) == 0 {
		return fmt.Errorf("at least one sheet is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if err := f.SetSheetName(first, sheets[0].Name); err != nil {
		return fmt.Errorf("renaming first sheet: %w", err)
	}
	for _, s := range sheets[1:] {
		if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}
	}

	for _, s := range sheets {
		refs := make([]string, 0, len(s.Cells))
		for ref := range s.Cells {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			if err := f.SetCellValue(s.Name, ref, s.Cells[ref]); err != nil {
				return fmt.Errorf("setting %s!%s: %w", s.Name, ref, err)
			}
		}
	}

	// SaveAs rejects names without an OOXML extension, and broker exports are
	// named .Xls whatever their container.
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
