package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/holdings/internal/id"
	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/integrity"
	"github.com/cleared-dev/holdings/internal/manifest"
	"github.com/cleared-dev/holdings/internal/model"
	"github.com/cleared-dev/holdings/internal/store"
	"github.com/cleared-dev/holdings/internal/workbook"
)

// Options configures an Engine.
type Options struct {
	RowErrors  RowErrorPolicy
	Duplicates DuplicatePolicy
	Location   *time.Location // zone of workbook wall clocks; nil means UTC
	Tolerance  decimal.Decimal

	// OnResult, if set, is called after every import attempt, successful or not.
	OnResult func(pair manifest.Pair, res *Result, err error)
}

// Result summarises one import attempt. On failure it reports what was
// written before the error.
type Result struct {
	RunID        string
	Import       model.Import
	Accounts     []model.Account
	Transactions int
	Skipped      []*importerr.DataError
	Warnings     []string
}

// Engine imports validated broker exports into a Store.
type Engine struct {
	store   store.Store
	layouts *Registry
	opts    Options
	log     zerolog.Logger
	runID   string
}

// NewEngine creates an engine. Every engine gets its own run id.
func NewEngine(st store.Store, layouts *Registry, log zerolog.Logger, opts Options) *Engine {
	if opts.RowErrors == "" {
		opts.RowErrors = RowErrorsAbort
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicatesError
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	runID := uuid.NewString()
	return &Engine{
		store:   st,
		layouts: layouts,
		opts:    opts,
		log:     log.With().Str("run_id", runID).Logger(),
		runID:   runID,
	}
}

// RunID identifies this engine's run in logs and history.
func (e *Engine) RunID() string { return e.runID }

// Run imports pairs in order and stops at the first failure.
func (e *Engine) Run(ctx context.Context, pairs []manifest.Pair) ([]*Result, error) {
	var results []*Result
	for _, pair := range pairs {
		res, err := e.Import(ctx, pair)
		if e.opts.OnResult != nil {
			e.opts.OnResult(pair, res, err)
		}
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("importing %s: %w", pair.Name, err)
		}
	}
	return results, nil
}

// Import validates and imports one manifest/import-file pair.
func (e *Engine) Import(ctx context.Context, pair manifest.Pair) (*Result, error) {
	m := pair.Manifest
	path := pair.ImportPath
	res := &Result{RunID: e.runID}
	log := e.log.With().Str("file", path).Str("fingerprint", id.ShortFingerprint(m.SHA256Sum)).Logger()

	if err := integrity.Verify(path, m.SHA256Sum); err != nil {
		return res, err
	}
	log.Debug().Msg("integrity verified")

	wb, err := workbook.Open(path)
	if err != nil {
		return res, err
	}

	layout := e.layouts.Get(m.Platform)
	if layout == nil {
		return res, &importerr.StructuralError{
			Loc: importerr.At(path),
			Msg: fmt.Sprintf("no workbook layout for platform %s", m.Platform.ID()),
		}
	}

	generated, err := e.reportDate(wb, layout)
	if err != nil {
		return res, err
	}

	// Base name only: the export is archived after import, so a path would go stale.
	res.Import = model.Import{
		ID:             m.SHA256Sum,
		Filename:       filepath.Base(path),
		PlatformID:     m.Platform.ID(),
		GenerationDate: generated,
	}
	if err := e.store.InsertImport(ctx, res.Import); err != nil {
		return res, &importerr.PersistenceError{Op: "insert import", Loc: importerr.At(path), Err: err}
	}

	resolver := &Resolver{
		Strategies:   layout.Strategies(),
		SummarySheet: layout.SummarySheet,
		Duplicates:   e.opts.Duplicates,
		Log:          log,
	}
	resolution, err := resolver.Resolve(wb, res.Import, m)
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, resolution.Warnings...)

	if err := e.store.InsertAccounts(ctx, resolution.Accounts); err != nil {
		return res, &importerr.PersistenceError{Op: "insert accounts", Loc: importerr.At(path), Err: err}
	}
	res.Accounts = resolution.Accounts

	parser := RowParser{
		Currency:  m.Platform.Currency(),
		Location:  e.opts.Location,
		Tolerance: e.opts.Tolerance,
	}
	for _, b := range resolution.Bindings {
		if err := e.importAccount(ctx, log, layout, parser, path, b, res); err != nil {
			return res, err
		}
	}

	log.Info().
		Int("accounts", len(res.Accounts)).
		Int("transactions", res.Transactions).
		Int("skipped", len(res.Skipped)).
		Msg("import complete")
	return res, nil
}

func (e *Engine) reportDate(wb *workbook.Workbook, layout *Layout) (time.Time, error) {
	summary, err := wb.Summary(layout.SummarySheet)
	if err != nil {
		return time.Time{}, err
	}
	loc := importerr.Location{
		File:   wb.Path(),
		Sheet:  summary.Name(),
		Row:    layout.ReportDateCell.Row,
		Column: workbook.ColumnName(layout.ReportDateCell.Col),
	}
	switch c := summary.At(layout.ReportDateCell).(type) {
	case workbook.DateTime:
		t, err := WallToUTC(c.Wall, e.opts.Location)
		return t, importerr.Locate(err, loc)
	default:
		err := importerr.Structural("report date must be date, got %s", workbook.Kind(c))
		err.Loc = loc
		return time.Time{}, err
	}
}

func (e *Engine) importAccount(ctx context.Context, log zerolog.Logger, layout *Layout, parser RowParser, path string, b Binding, res *Result) error {
	log = log.With().Str("sheet", b.Sheet.Name()).Str("account", b.AccountID).Logger()
	scanner := layout.Scanner()

	start, ok := scanner.Locate(b.Sheet)
	if !ok {
		msg := fmt.Sprintf("sheet %s: no %q table found", b.Sheet.Name(), layout.Sentinel)
		log.Warn().Msg("no transactions table found")
		res.Warnings = append(res.Warnings, msg)
		return nil
	}

	count := 0
	for row, cells := range scanner.Rows(b.Sheet, start) {
		loc := importerr.Location{File: path, Sheet: b.Sheet.Name(), Row: row, Account: b.AccountID}

		txn, err := parser.Parse(cells, res.Import.ID, b.AccountID)
		if err != nil {
			err = importerr.Locate(err, loc)
			var de *importerr.DataError
			if e.opts.RowErrors == RowErrorsSkip && errors.As(err, &de) {
				log.Warn().Err(err).Int("row", row+1).Msg("skipping row")
				res.Skipped = append(res.Skipped, de)
				continue
			}
			return err
		}

		if _, err := e.store.InsertTransaction(ctx, txn); err != nil {
			return &importerr.PersistenceError{Op: "insert transaction", Loc: loc, Err: err}
		}
		res.Transactions++
		count++
	}
	log.Debug().Int("transactions", count).Msg("account imported")
	return nil
}
