package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/holdings/internal/store/postgres"
)

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if e.cfg.DatabaseURL == "" {
				return errors.New("no database configured: set DATABASE_URL or database_url")
			}

			version, changed, err := postgres.Migrate(e.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			e.log.Info().Uint("version", version).Bool("changed", changed).Msg("migrations applied")
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated schema to version %d\n", version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema already at version %d\n", version)
			}
			return nil
		},
	}
}
