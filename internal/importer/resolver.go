package importer

import (
	"regexp"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/manifest"
	"github.com/cleared-dev/holdings/internal/model"
	"github.com/cleared-dev/holdings/internal/workbook"
)

// Strategy extracts an account id from a sheet, if it can.
type Strategy interface {
	Name() string
	Match(sheet *workbook.Sheet) (string, bool)
}

// SheetNameStrategy matches the pattern against the sheet name.
type SheetNameStrategy struct {
	Pattern *regexp.Regexp
}

func (SheetNameStrategy) Name() string { return "sheet-name" }

func (s SheetNameStrategy) Match(sheet *workbook.Sheet) (string, bool) {
	return capture(s.Pattern, sheet.Name())
}

// FirstCellStrategy matches the pattern against cell A1 when it holds text.
type FirstCellStrategy struct {
	Pattern *regexp.Regexp
}

func (FirstCellStrategy) Name() string { return "first-cell" }

func (s FirstCellStrategy) Match(sheet *workbook.Sheet) (string, bool) {
	switch c := sheet.Cell(0, 0).(type) {
	case workbook.Text:
		return capture(s.Pattern, string(c))
	default:
		return "", false
	}
}

func capture(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Binding ties a discovered account to the sheet holding its transactions.
type Binding struct {
	AccountID string
	Sheet     *workbook.Sheet
	Strategy  string
}

// Resolution is the outcome of account discovery for one workbook.
type Resolution struct {
	Bindings []Binding
	Accounts []model.Account // same order as Bindings
	Warnings []string
}

// Resolver discovers the accounts held in a workbook.
type Resolver struct {
	Strategies   []Strategy
	SummarySheet string
	Duplicates   DuplicatePolicy
	Log          zerolog.Logger
}

// Resolve runs the strategies over every non-summary sheet, builds one Account
// per distinct id and overlays the manifest's metadata onto them.
func (r *Resolver) Resolve(wb *workbook.Workbook, imp model.Import, m *manifest.Manifest) (*Resolution, error) {
	res := &Resolution{}
	index := make(map[string]int)

	for _, sheet := range wb.Sheets() {
		if sheet.Name() == r.SummarySheet {
			continue
		}
		accountID, strategy, ok := r.match(sheet, res)
		if !ok {
			r.Log.Debug().Str("sheet", sheet.Name()).Msg("no account id found, skipping sheet")
			continue
		}

		b := Binding{AccountID: accountID, Sheet: sheet, Strategy: strategy}
		if i, dup := index[accountID]; dup {
			prev := res.Bindings[i].Sheet.Name()
			switch r.Duplicates {
			case DuplicatesFirst:
				res.warn(r.Log, "duplicate account "+accountID+": keeping sheet "+prev,
					map[string]any{"account": accountID, "ignored_sheet": sheet.Name()})
			case DuplicatesLast:
				res.warn(r.Log, "duplicate account "+accountID+": rebinding to sheet "+sheet.Name(),
					map[string]any{"account": accountID, "ignored_sheet": prev})
				res.Bindings[i] = b
			default:
				err := importerr.Structural("account %s found on sheets %q and %q", accountID, prev, sheet.Name())
				err.Loc.File = wb.Path()
				err.Loc.Account = accountID
				return nil, err
			}
			continue
		}

		r.Log.Debug().Str("sheet", sheet.Name()).Str("account", accountID).Str("strategy", strategy).Msg("account found")
		index[accountID] = len(res.Bindings)
		res.Bindings = append(res.Bindings, b)
		res.Accounts = append(res.Accounts, model.Account{
			ID:         accountID,
			PlatformID: imp.PlatformID,
			ImportID:   imp.ID,
		})
	}

	r.overlay(res, m)
	return res, nil
}

// match returns the first strategy's id. The remaining strategies are still
// consulted so a disagreement can be reported.
func (r *Resolver) match(sheet *workbook.Sheet, res *Resolution) (string, string, bool) {
	var (
		id, name string
		found    bool
	)
	for _, s := range r.Strategies {
		got, ok := s.Match(sheet)
		if !ok {
			continue
		}
		if !found {
			id, name, found = got, s.Name(), true
			continue
		}
		if got != id {
			res.warn(r.Log, "sheet "+sheet.Name()+": "+s.Name()+" id "+got+" disagrees with "+name+" id "+id,
				map[string]any{"sheet": sheet.Name(), "kept": id, "ignored": got})
		}
	}
	return id, name, found
}

func (r *Resolver) overlay(res *Resolution, m *manifest.Manifest) {
	if m == nil {
		return
	}
	bound := make(map[string]bool, len(res.Accounts))
	for i := range res.Accounts {
		if md, ok := m.Lookup(res.Accounts[i].ID); ok {
			bound[md.ID] = md.Apply(&res.Accounts[i])
		}
	}
	for _, md := range m.Accounts {
		if !bound[md.ID] {
			res.warn(r.Log, "manifest account "+md.ID+" not found in workbook", map[string]any{"account": md.ID})
		}
	}
}

func (res *Resolution) warn(log zerolog.Logger, msg string, fields map[string]any) {
	log.Warn().Fields(fields).Msg(msg)
	res.Warnings = append(res.Warnings, msg)
}
