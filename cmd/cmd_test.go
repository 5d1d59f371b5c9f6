package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "Position,Position ident,BarCodeNumber,Position Detail,IdentNumber,Detail,Type,Weight,Unit,QTY,Pallet Number,Work Number\n"

const goodCSV = header +
	"1,A,111,,ID1,,EP,5,kg,2,P1,W1\n" +
	"2,B,222,,ID2,,PD,800,kg,2,P2,W1\n" +
	"3,C,333,,ID3,,mhl,,,1,,W1"

// run executes the root command in a fresh working directory state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, verbose, noPersist, strict, overweightIsError = "", false, false, false, false
	printReport, errorLogPath = false, ""
	summaryJSON, summaryPallet = false, ""
	exportDir, serveAddr, forceInit = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestImportSummaryAndExport(t *testing.T) {
	dir := workspace(t)
	writeFile(t, "inbound.csv", goodCSV)

	out, err := run(t, "import", "inbound.csv", "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported inbound.csv (csv, batch ")
	assert.Contains(t, out, "over limit")
	assert.Contains(t, out, "pallet weighs 1600 kg, limit is 1000 kg")

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Lines:        3")
	assert.Contains(t, out, "Total weight: 1,610 kg")

	out, err = run(t, "summary", "--pallet", "UNKNOWN")
	require.NoError(t, err)
	assert.Contains(t, out, "Pallet UNKNOWN: 1 line(s)")
	assert.Contains(t, out, "ID3")

	_, err = run(t, "summary", "--pallet", "P9")
	assert.Error(t, err)

	out, err = run(t, "export", "csv", "--out", "exports")
	require.NoError(t, err)
	csvPath := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join("exports"), filepath.Dir(csvPath))
	assert.True(t, strings.HasPrefix(filepath.Base(csvPath), "inbound_items_"), csvPath)
	data, err := os.ReadFile(filepath.Join(dir, csvPath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Position,Position ident,"))
	assert.Len(t, strings.Split(string(data), "\n"), 4)

	out, err = run(t, "export", "xlsx", "--out", "exports")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(strings.TrimSpace(out)), "inbound_report_"), out)
	f, err := excelize.OpenFile(strings.TrimSpace(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Items", "Pallets", "Types", "Findings"}, f.GetSheetList(),
		"error counters are not kept between runs")

	out, err = run(t, "export", "xml", "--out", "exports")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(strings.TrimSpace(out)), "inbound_items_"), out)
	data, err = os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<pallet n="3" number="UNKNOWN">`)

	_, err = run(t, "export", "pdf")
	assert.Error(t, err)
}

func TestImportMissingColumns(t *testing.T) {
	workspace(t)
	writeFile(t, "short.csv", "Position,QTY\n1,2")

	out, err := run(t, "import", "short.csv")

	require.NoError(t, err)
	assert.Contains(t, out, "short.csv is missing required columns: Position ident, BarCodeNumber")
	assert.Contains(t, out, "Nothing was imported.")
}

func TestImportErrorLogAndStrict(t *testing.T) {
	workspace(t)
	writeFile(t, "odd.csv", header+"1,A,111,,ID1,,EP,5,lb,2,P1,W1")

	out, err := run(t, "import", "odd.csv", "--error-log", "findings.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation report written to findings.txt")

	log, err := os.ReadFile("findings.txt")
	require.NoError(t, err)
	assert.Contains(t, string(log), "Manifest:  odd.csv")
	assert.Contains(t, string(log), "unit is not recognized")

	_, err = run(t, "import", "odd.csv", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestCommandsWithoutImport(t *testing.T) {
	workspace(t)

	_, err := run(t, "summary")
	assert.ErrorIs(t, err, errNoImport)

	_, err = run(t, "export", "csv")
	assert.ErrorIs(t, err, errNoImport)

	_, err = run(t, "import", "missing.csv")
	assert.Error(t, err)
}

func TestNoPersist(t *testing.T) {
	workspace(t)
	writeFile(t, "inbound.csv", goodCSV)

	_, err := run(t, "import", "inbound.csv", "--no-persist")
	require.NoError(t, err)

	_, err = run(t, "summary")
	assert.ErrorIs(t, err, errNoImport)
}

func TestSettingsCommands(t *testing.T) {
	workspace(t)

	out, err := run(t, "settings", "get")
	require.NoError(t, err)
	assert.Equal(t, "Max pallet weight: 1,000 kg\n", out)

	out, err = run(t, "settings", "set-max-weight", "750.5")
	require.NoError(t, err)
	assert.Equal(t, "Max pallet weight: 750.5 kg\n", out)

	out, err = run(t, "settings", "get")
	require.NoError(t, err)
	assert.Equal(t, "Max pallet weight: 750.5 kg\n", out)

	out, err = run(t, "settings", "set-max-weight", "--", "-3")
	require.NoError(t, err)
	assert.Equal(t, "Max pallet weight: 0 kg\n", out)

	_, err = run(t, "settings", "set-max-weight", "heavy")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	workspace(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote manifest.yaml\n", out)

	_, err = run(t, "config", "init")
	assert.Error(t, err)

	_, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)

	t.Setenv("MANIFEST_STORAGE_TYPE", "sqlite")
	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "type: sqlite")

	_, err = run(t, "config", "show", "--config", "nope.yaml")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	workspace(t)
	writeFile(t, "incoming/good.csv", goodCSV)
	writeFile(t, "incoming/nested/short.csv", "Position,QTY\n1,2")
	writeFile(t, "incoming/notes.md", "ignored")

	out, err := run(t, "check", "incoming")

	require.Error(t, err)
	assert.Contains(t, out, "✓ "+filepath.Join("incoming", "good.csv")+": 3 row(s), 3 pallet(s), 0 error(s)")
	assert.Contains(t, out, "✗ "+filepath.Join("incoming", "nested", "short.csv")+": missing columns")
	assert.Contains(t, out, "Total files:     2")
	assert.Contains(t, out, "Failed:          1")

	_, err = run(t, "summary")
	assert.ErrorIs(t, err, errNoImport, "check leaves the current import alone")
}

func TestDiscoverManifestFiles(t *testing.T) {
	workspace(t)
	writeFile(t, "a/one.xlsx", "")
	writeFile(t, "a/two.TXT", "")
	writeFile(t, "a/skip.json", "")
	writeFile(t, "explicit.dat", "")

	files, err := discoverManifestFiles([]string{"a", "explicit.dat"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join("a", "one.xlsx"),
		filepath.Join("a", "two.TXT"),
		"explicit.dat",
	}, files)

	_, err = discoverManifestFiles([]string{"absent"})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Pallet Manifest Importer\nVersion:    "+Version)
}
