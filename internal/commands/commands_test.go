package commands_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/holdings/internal/importlog"
	"github.com/cleared-dev/holdings/internal/integrity"
	"github.com/cleared-dev/holdings/internal/workbook/workbooktest"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "holdings-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "holdings")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/holdings")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runHoldings(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "DATABASE_URL=", "HOLDINGS_LOG_LEVEL=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initProject runs init and returns the project dir and its config path.
func initProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	_, err := runHoldings(t, "init", dir)
	require.NoError(t, err)
	return dir, filepath.Join(dir, "holdings.yaml")
}

// writeExport writes export.Xls and its manifest into dir. Each name becomes
// one transaction row on the "Main (VG999)" sheet.
func writeExport(t *testing.T, dir string, names ...string) string {
	t.Helper()
	cells := map[string]any{
		"A11": "Investment Transactions",
		"A13": "Date",
	}
	row := 14
	for _, name := range names {
		cells[fmt.Sprintf("A%d", row)] = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
		cells[fmt.Sprintf("B%d", row)] = name
		cells[fmt.Sprintf("D%d", row)] = 10
		cells[fmt.Sprintf("E%d", row)] = 5
		cells[fmt.Sprintf("F%d", row)] = 50
		row++
	}
	cells[fmt.Sprintf("A%d", row)] = "Total"

	path := filepath.Join(dir, "export.Xls")
	require.NoError(t, workbooktest.WriteXLSX(path,
		workbooktest.SheetSpec{Name: "Summary", Cells: map[string]any{
			"A2": time.Date(2024, time.March, 2, 8, 15, 0, 0, time.UTC),
		}},
		workbooktest.SheetSpec{Name: "Main (VG999)", Cells: cells},
	))

	digest, err := integrity.Digest(path)
	require.NoError(t, err)
	manifest := fmt.Sprintf(`sha256sum = %q
platform = "vanguard_uk"

[[accounts]]
id = "VG999"
label = "Main"
kind = "isa"
`, digest)
	manifestPath := filepath.Join(dir, "export.toml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))
	return manifestPath
}

func TestInit_CreatesStructure(t *testing.T) {
	dir, _ := initProject(t)

	for _, d := range []string{"imports", filepath.Join("imports", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{".gitignore", ".env.example", filepath.Join("imports", ".gitkeep")} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	_, cfgPath := initProject(t)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "imports_dir: imports")
	assert.Contains(t, contents, "row_errors: abort")
	assert.Contains(t, contents, "history_file: imports/history.csv")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir, _ := initProject(t)
	out, err := runHoldings(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestImport_DryRun(t *testing.T) {
	dir, cfgPath := initProject(t)
	writeExport(t, filepath.Join(dir, "imports"), "Vanguard FTSE All-World UCITS ETF (VWRL)")

	out, err := runHoldings(t, "import", "--dry-run", "--config", cfgPath, "--log-format", "json")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Checked export: 1 accounts, 1 transactions, 0 skipped rows\n  Main\n")

	entries, err := importlog.Read(filepath.Join(dir, "imports", "history.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, importlog.StatusDryRun, entries[0].Status)
	assert.Equal(t, "export.Xls", entries[0].File)
	assert.Equal(t, "vanguard_uk", entries[0].Platform)
	assert.Equal(t, 1, entries[0].Accounts)
	assert.Equal(t, 1, entries[0].Transactions)
	assert.NotEmpty(t, entries[0].RunID)

	_, err = os.Stat(filepath.Join(dir, "imports", "export.Xls"))
	assert.NoError(t, err, "dry runs never archive")
}

func TestImport_DryRunRowErrors(t *testing.T) {
	dir, cfgPath := initProject(t)
	writeExport(t, filepath.Join(dir, "imports"), "Fund (VWRL)", "Cash", "Fund (VUSA)")

	out, err := runHoldings(t, "import", "--dry-run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, out, "ticker symbol missing")

	out, err = runHoldings(t, "import", "--dry-run", "--config", cfgPath, "--row-errors", "skip")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 accounts, 2 transactions, 1 skipped rows")

	entries, err := importlog.Read(filepath.Join(dir, "imports", "history.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, importlog.StatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Error, "row 15")
	assert.Equal(t, importlog.StatusDryRun, entries[1].Status)
	assert.Equal(t, 1, entries[1].Skipped)
}

func TestImport_IntegrityFailure(t *testing.T) {
	dir, cfgPath := initProject(t)
	imports := filepath.Join(dir, "imports")
	writeExport(t, imports, "Fund (VWRL)")
	require.NoError(t, os.WriteFile(filepath.Join(imports, "export.Xls"), []byte("tampered"), 0o644))

	out, err := runHoldings(t, "import", "--dry-run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, out, "integrity error")
}

func TestImport_NoDatabase(t *testing.T) {
	dir, cfgPath := initProject(t)
	writeExport(t, filepath.Join(dir, "imports"), "Fund (VWRL)")

	out, err := runHoldings(t, "import", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, out, "no database configured")
}

func TestImport_EmptyDir(t *testing.T) {
	_, cfgPath := initProject(t)
	out, err := runHoldings(t, "import", "--dry-run", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No import files found")
}

func TestImport_InvalidPolicy(t *testing.T) {
	_, cfgPath := initProject(t)
	out, err := runHoldings(t, "import", "--dry-run", "--config", cfgPath, "--row-errors", "ignore")
	require.Error(t, err)
	assert.Contains(t, out, "import.row_errors")
}

func TestImport_MissingExplicitConfig(t *testing.T) {
	out, err := runHoldings(t, "import", "--dry-run", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "reading config")
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeExport(t, dir, "Fund (VWRL)")

	out, err := runHoldings(t, "verify", manifestPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "platform: Vanguard Investor UK")
	assert.Contains(t, out, "OK")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.Xls"), []byte("tampered"), 0o644))
	out, err = runHoldings(t, "verify", manifestPath)
	require.Error(t, err)
	assert.Contains(t, out, "does not match manifest value")
}

func TestMigrate_NoDatabase(t *testing.T) {
	out, err := runHoldings(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, out, "no database configured")
}

func TestVersion(t *testing.T) {
	out, err := runHoldings(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
