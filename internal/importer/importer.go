// Package importer turns a validated broker export into account and
// transaction records: it resolves account sheets, locates each account's
// transaction table and parses its rows.
package importer

import (
	"regexp"

	"github.com/cleared-dev/holdings/internal/model"
	"github.com/cleared-dev/holdings/internal/workbook"
)

// Layout describes where a platform's export keeps its data.
type Layout struct {
	Platform model.Platform

	// SummarySheet holds workbook-level metadata and is never an account.
	SummarySheet   string
	ReportDateCell workbook.Coord

	// AccountPattern captures the account id from "<free text> (<ID>)".
	AccountPattern *regexp.Regexp

	// Sentinel marks the row two rows above the transaction table header.
	Sentinel     string
	SentinelScan int // rows of column A searched for the sentinel
	TableOffset  int // first data row = sentinel row + TableOffset
	RowWidth     int
}

// Scanner returns the table scanner for this layout.
func (l *Layout) Scanner() TableScanner {
	return TableScanner{
		Sentinel: l.Sentinel,
		Limit:    l.SentinelScan,
		Offset:   l.TableOffset,
		Width:    l.RowWidth,
	}
}

// Strategies returns the ordered account-id heuristics for this layout.
func (l *Layout) Strategies() []Strategy {
	return []Strategy{
		SheetNameStrategy{Pattern: l.AccountPattern},
		FirstCellStrategy{Pattern: l.AccountPattern},
	}
}

// VanguardUK is the layout of Vanguard Investor UK "Xls" exports.
var VanguardUK = &Layout{
	Platform:       model.PlatformVanguardUK,
	SummarySheet:   "Summary",
	ReportDateCell: workbook.Coord{Row: 1, Col: 0}, // A2
	AccountPattern: regexp.MustCompile(`^.* \((VG[^()]*)\)`),
	Sentinel:       "Investment Transactions",
	SentinelScan:   1000,
	TableOffset:    3,
	RowWidth:       6,
}

// Registry holds layouts by platform.
type Registry struct {
	layouts map[model.Platform]*Layout
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[model.Platform]*Layout)}
}

// Register adds a layout. Panics on duplicate platform.
func (r *Registry) Register(l *Layout) {
	if _, ok := r.layouts[l.Platform]; ok {
		panic("duplicate layout for platform: " + l.Platform.ID())
	}
	r.layouts[l.Platform] = l
}

// Get returns the layout for platform, or nil.
func (r *Registry) Get(p model.Platform) *Layout {
	return r.layouts[p]
}

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(VanguardUK)
	return r
}
