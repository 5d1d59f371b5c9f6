// =============================================================================
// Pallet Manifest Importer - XLSX Manifest Parser
// =============================================================================
//
// This module reads a manifest workbook exported from the warehouse system.
// Only the first worksheet is used. Its first row is the header and every
// following non-empty row becomes one RawRow.
//
// CELL VALUES:
//   Cells are read as their formatted text, the same text a user sees in the
//   spreadsheet. Numeric-looking Weight and QTY values stay strings so the
//   cleaner applies a single coercion rule to both XLSX and CSV input.
//
// FAIL-SOFT HEADERS:
//   A workbook missing a required column is not an error. The parser logs a
//   warning naming the missing columns and returns an empty table with
//   Table.Missing populated. Errors are reserved for unreadable workbooks.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
)

// ErrNoSheets is returned for a workbook that contains no worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// Parser reads manifest workbooks.
type Parser struct {
	logger zerolog.Logger
}

// New creates a Parser that reports diagnostics to logger.
func New(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "xlsxparser").Logger()}
}

// ParseManifest reads a manifest workbook from r.
//
// PARAMETERS:
//   - ctx: Checked once the bytes are read, before the workbook is parsed.
//   - r: The workbook bytes.
//   - name: The file or upload name, recorded on the table and in logs.
//
// RETURNS:
//   - The table. When required columns are missing it has no rows and
//     lists the missing names.
//   - An error if the bytes cannot be read or are not a workbook.
func (p *Parser) ParseManifest(ctx context.Context, r io.Reader, name string) (*manifest.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	table := manifest.FromGrid(rows)
	table.SourceFile = name
	table.Format = manifest.FormatXLSX
	table.Sheet = sheetName

	if !table.OK() {
		p.logger.Warn().
			Str("file", name).
			Str("sheet", sheetName).
			Strs("missing", table.Missing).
			Msg("manifest is missing required columns")
		return table, nil
	}

	p.logger.Debug().
		Str("file", name).
		Str("sheet", sheetName).
		Int("rows", len(table.Rows)).
		Int("skipped_empty", table.SkippedEmpty).
		Msg("parsed manifest workbook")

	return table, nil
}

// ParseManifestFile opens path and parses it with ParseManifest.
func (p *Parser) ParseManifestFile(ctx context.Context, path string) (*manifest.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseManifest(ctx, file, filepath.Base(path))
}
