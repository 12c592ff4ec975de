package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/holdings/internal/id"
	"github.com/cleared-dev/holdings/internal/integrity"
	"github.com/cleared-dev/holdings/internal/manifest"
)

func newVerifyCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <manifest.toml>",
		Short: "Check an export file against its manifest fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}

			pair, err := manifest.Open(args[0])
			if err != nil {
				return err
			}
			actual, err := integrity.Digest(pair.ImportPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:     %s\n", pair.ImportPath)
			fmt.Fprintf(out, "platform: %s\n", pair.Manifest.Platform.Description())
			fmt.Fprintf(out, "declared: %s\n", pair.Manifest.SHA256Sum)
			fmt.Fprintf(out, "actual:   %s\n", actual)

			if err := integrity.Verify(pair.ImportPath, pair.Manifest.SHA256Sum); err != nil {
				return err
			}
			e.log.Debug().Str("fingerprint", id.ShortFingerprint(actual)).Msg("fingerprint verified")
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
