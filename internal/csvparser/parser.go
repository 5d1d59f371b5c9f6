// =============================================================================
// Pallet Manifest Importer - CSV Manifest Parser
// =============================================================================
//
// This module reads a manifest exported as CSV. It applies the same column
// layout and fail-soft header handling as the XLSX parser, so a CSV export
// and a workbook export of the same manifest produce the same rows.
//
// ENCODINGS:
//   Older warehouse exports are written in a Windows code page. The reader
//   decodes UTF-8 (with or without BOM), Windows-1252 and ISO-8859-1 to
//   UTF-8 before splitting fields.
//
// =============================================================================

package csvparser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
)

// Parser reads CSV manifests.
type Parser struct {
	settings config.CSVSettings
	logger   zerolog.Logger
}

// New creates a Parser with the given settings.
func New(settings config.CSVSettings, logger zerolog.Logger) *Parser {
	return &Parser{
		settings: settings,
		logger:   logger.With().Str("component", "csvparser").Logger(),
	}
}

// ParseManifest reads a CSV manifest from r.
//
// PARAMETERS:
//   - ctx: Checked once the records are read, before rows are mapped.
//   - r: The CSV bytes in the configured encoding.
//   - name: The file or upload name, recorded on the table and in logs.
//
// RETURNS:
//   - The table. When required columns are missing it has no rows and
//     lists the missing names.
//   - An error if the encoding is unknown or the CSV is malformed.
func (p *Parser) ParseManifest(ctx context.Context, r io.Reader, name string) (*manifest.Table, error) {
	decoder, err := decoderFor(p.settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(r, decoder))
	configureReader(csvReader, p.settings)

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := manifest.FromGrid(records)
	table.SourceFile = name
	table.Format = manifest.FormatCSV

	if !table.OK() {
		p.logger.Warn().
			Str("file", name).
			Strs("missing", table.Missing).
			Msg("manifest is missing required columns")
		return table, nil
	}

	p.logger.Debug().
		Str("file", name).
		Int("rows", len(table.Rows)).
		Int("skipped_empty", table.SkippedEmpty).
		Msg("parsed manifest csv")

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

// configureReader applies the delimiter setting and relaxes field counting,
// since exports often drop trailing empty cells.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "pipe", "PIPE":
		reader.Comma = '|'
	case "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = []rune(settings.Delimiter)[0]
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// decoderFor maps an encoding name to a decoder producing UTF-8.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
