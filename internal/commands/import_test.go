package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/logger"
)

func TestExplainRunError(t *testing.T) {
	assert.NoError(t, explainRunError(nil))

	other := errors.New("boom")
	assert.Same(t, other, explainRunError(other))

	dup := fmt.Errorf("importing export: %w", &importerr.PersistenceError{Op: "insert import", Err: importerr.ErrDuplicate})
	err := explainRunError(dup)
	assert.ErrorIs(t, err, importerr.ErrDuplicate)
	assert.Contains(t, err.Error(), "already imported")
}

func TestLoad_AttachesLoggerToContext(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())

	opts := &globalOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml"), logLevel: "info", logFormat: "json"}
	_, err := opts.load(cmd)
	require.NoError(t, err)

	log := logger.FromContext(cmd.Context())
	log.Info().Msg("from command context")
	assert.Contains(t, stderr.String(), "from command context")
}
