package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/holdings/internal/buildinfo"
	"github.com/cleared-dev/holdings/internal/config"
	"github.com/cleared-dev/holdings/internal/logger"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// env is the per-invocation state shared by subcommands.
type env struct {
	cfg     *config.Config
	baseDir string // relative config paths resolve against this
	log     zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "holdings",
		Short:   "Import broker exports into an investment ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.FileName, "config file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console or json (overrides config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newVerifyCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))

	return rootCmd
}

// load reads .env and the config file, applies overrides and builds the logger,
// which is also attached to the command's context.
// A missing config file is fine unless --config was given explicitly.
func (o *globalOptions) load(cmd *cobra.Command) (*env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(o.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return &env{cfg: cfg, baseDir: filepath.Dir(o.configPath), log: log}, nil
}

func (e *env) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.baseDir, p)
}
