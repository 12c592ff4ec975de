package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/holdings/internal/importer"
	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/importlog"
	"github.com/cleared-dev/holdings/internal/manifest"
	"github.com/cleared-dev/holdings/internal/store"
	"github.com/cleared-dev/holdings/internal/store/memory"
	"github.com/cleared-dev/holdings/internal/store/postgres"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var dir string
	var dryRun bool
	var rowErrors string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every manifest/export pair in the imports directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if rowErrors != "" {
				e.cfg.Import.RowErrors = rowErrors
			}
			if dir == "" {
				dir = e.path(e.cfg.ImportsDir)
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), e, dir, dryRun)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "imports directory (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without writing to the database")
	cmd.Flags().StringVar(&rowErrors, "row-errors", "", "invalid row policy: abort or skip (overrides config)")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, e *env, dir string, dryRun bool) error {
	opts, err := e.cfg.EngineOptions()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pairs, warnings, err := manifest.Discover(dir)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		e.log.Warn().Str("manifest", w.ManifestPath).Msg(w.Reason)
	}
	if len(pairs) == 0 {
		fmt.Fprintf(out, "No import files found in %s\n", dir)
		return nil
	}

	historyPath := e.path(e.cfg.Import.HistoryFile)
	history, err := importlog.Read(historyPath)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if importlog.Imported(history, p.Manifest.SHA256Sum) {
			e.log.Warn().Str("file", p.ImportPath).Msg("history shows this file was already imported")
		}
	}

	st, closeStore, err := openStore(ctx, e, dryRun)
	if err != nil {
		return err
	}
	defer closeStore()

	archive := e.cfg.Import.ArchiveProcessed && !dryRun
	opts.OnResult = func(pair manifest.Pair, res *importer.Result, importErr error) {
		entry := historyEntry(pair, res, importErr, dryRun)
		if err := importlog.Append(historyPath, []importlog.Entry{entry}); err != nil {
			e.log.Error().Err(err).Msg("writing import history")
		}
		if importErr == nil && archive {
			if err := manifest.MarkProcessed(dir, pair); err != nil {
				e.log.Error().Err(err).Str("file", pair.ImportPath).Msg("archiving import")
			}
		}
	}

	eng := importer.NewEngine(st, importer.DefaultRegistry(), e.log, opts)
	results, runErr := eng.Run(ctx, pairs)
	done := results
	if runErr != nil {
		done = results[:len(results)-1]
	}
	for i, res := range done {
		verb := "Imported"
		if dryRun {
			verb = "Checked"
		}
		fmt.Fprintf(out, "%s %s: %d accounts, %d transactions, %d skipped rows\n",
			verb, pairs[i].Name, len(res.Accounts), res.Transactions, len(res.Skipped))
		for _, a := range res.Accounts {
			fmt.Fprintf(out, "  %s\n", a.DisplayName())
		}
	}
	return explainRunError(runErr)
}

// explainRunError adds a hint to failures the user can act on.
func explainRunError(err error) error {
	if importerr.IsDuplicate(err) {
		return fmt.Errorf("%w (this export was already imported; archive or remove its manifest)", err)
	}
	return err
}

// openStore returns the in-memory store for dry runs and PostgreSQL otherwise.
func openStore(ctx context.Context, e *env, dryRun bool) (store.Store, func(), error) {
	if dryRun {
		return memory.New(), func() {}, nil
	}
	if e.cfg.DatabaseURL == "" {
		return nil, nil, errors.New("no database configured: set DATABASE_URL or database_url, or use --dry-run")
	}
	conn, err := postgres.Connect(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := conn.Close(context.Background()); err != nil {
			e.log.Warn().Err(err).Msg("closing database connection")
		}
	}
	return postgres.New(conn), closeFn, nil
}

func historyEntry(pair manifest.Pair, res *importer.Result, err error, dryRun bool) importlog.Entry {
	entry := importlog.Entry{
		Timestamp:   time.Now().UTC(),
		File:        filepath.Base(pair.ImportPath),
		Fingerprint: pair.Manifest.SHA256Sum,
		Platform:    pair.Manifest.Platform.ID(),
		Status:      importlog.StatusImported,
	}
	if res != nil {
		entry.RunID = res.RunID
		entry.Accounts = len(res.Accounts)
		entry.Transactions = res.Transactions
		entry.Skipped = len(res.Skipped)
	}
	switch {
	case err != nil:
		entry.Status = importlog.StatusFailed
		entry.Error = err.Error()
	case dryRun:
		entry.Status = importlog.StatusDryRun
	}
	return entry
}
