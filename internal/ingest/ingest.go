// Package ingest picks the manifest reader for a file by its extension.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
	"github.com/ginjaninja78/pallet-manifest/internal/csvparser"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
	"github.com/ginjaninja78/pallet-manifest/internal/xlsxparser"
)

// Reader dispatches to the XLSX or CSV parser.
type Reader struct {
	xlsx *xlsxparser.Parser
	csv  *csvparser.Parser
}

// NewReader creates a Reader using the CSV settings from cfg.
func NewReader(cfg config.CSVSettings, logger zerolog.Logger) *Reader {
	return &Reader{
		xlsx: xlsxparser.New(logger),
		csv:  csvparser.New(cfg, logger),
	}
}

// FormatFor returns the format implied by the name's extension.
func FormatFor(name string) (manifest.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return manifest.FormatXLSX, nil
	case ".csv", ".txt":
		return manifest.FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

// Read parses r, choosing the parser from name.
func (rd *Reader) Read(ctx context.Context, name string, r io.Reader) (*manifest.Table, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	if format == manifest.FormatXLSX {
		return rd.xlsx.ParseManifest(ctx, r, name)
	}
	return rd.csv.ParseManifest(ctx, r, name)
}

// ReadFile opens path and parses it with Read.
func (rd *Reader) ReadFile(ctx context.Context, path string) (*manifest.Table, error) {
	if _, err := FormatFor(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return rd.Read(ctx, filepath.Base(path), file)
}
