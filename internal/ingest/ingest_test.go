package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
)

func TestFormatFor(t *testing.T) {
	tests := map[string]manifest.Format{
		"a.xlsx":    manifest.FormatXLSX,
		"B.XLSX":    manifest.FormatXLSX,
		"c.xlsm":    manifest.FormatXLSX,
		"d.csv":     manifest.FormatCSV,
		"dir/e.txt": manifest.FormatCSV,
	}
	for name, want := range tests {
		got, err := FormatFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := FormatFor("manifest.pdf")
	assert.Error(t, err)
}

func TestReadFileDispatches(t *testing.T) {
	dir := t.TempDir()
	rd := NewReader(config.Default().CSV, zerolog.Nop())

	csvPath := filepath.Join(dir, "m.csv")
	header := strings.Join(manifest.RequiredColumns, ",")
	require.NoError(t, os.WriteFile(csvPath, []byte(header+"\n1,A,111,,ID1,,EP,5,kg,1,P1,W1"), 0644))

	table, err := rd.ReadFile(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, manifest.FormatCSV, table.Format)
	assert.Len(t, table.Rows, 1)

	xlsxPath := filepath.Join(dir, "m.xlsx")
	f := excelize.NewFile()
	var row []interface{}
	for _, c := range manifest.RequiredColumns {
		row = append(row, c)
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &row))
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	table, err = rd.ReadFile(context.Background(), xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, manifest.FormatXLSX, table.Format)
	assert.Empty(t, table.Rows)
}

func TestReadFileRejectsUnknownExtension(t *testing.T) {
	rd := NewReader(config.Default().CSV, zerolog.Nop())
	_, err := rd.ReadFile(context.Background(), "manifest.json")
	assert.Error(t, err)
}
