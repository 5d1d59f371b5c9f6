// =============================================================================
// Pallet Manifest Importer - File Manager Utility
// =============================================================================
//
// This module names and places the files the importer writes:
//   - Export files (items CSV, report workbook, items XML)
//   - Validation logs written by 'manifest import --error-log'
//
// NAMING:
//   File names come from a configurable pattern (export.file_name_format).
//   The default "{original}_{kind}_{timestamp}" turns an import of
//   "manifest-0412.xlsx" into "manifest-0412_items_20240412_081500.csv".
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager places output files under one directory.
type FileManager struct {
	// OutputDir is the directory exports are written to.
	OutputDir string

	// NameFormat is the file name pattern, without extension.
	NameFormat string

	// now is replaceable in tests.
	now func() time.Time
}

// NewFileManager creates a FileManager for outputDir using nameFormat.
func NewFileManager(outputDir, nameFormat string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
		now:        time.Now,
	}
}

// EnsureDirectories creates the output directory if it does not exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath returns the path for an output file.
//
// PARAMETERS:
//   - kind: What the file holds ("items", "report", "errors").
//   - original: The imported file name. Its directory and extension are
//     dropped; an empty value becomes "manifest".
//   - ext: The extension including the dot.
func (fm *FileManager) OutputPath(kind, original, ext string) string {
	name := GenerateOutputFileName(fm.NameFormat, ext, map[string]string{
		"kind":     kind,
		"original": BaseName(original),
	}, fm.now())
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a file name from a pattern.
//
// PARAMETERS:
//   - format: The pattern. Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Date (YYYYMMDD)
//     {time}      - Time (HHMMSS)
//     any key of params, e.g. {original} or {kind}
//   - ext: Appended unless the result already ends with it.
//   - params: Placeholder values. Values are sanitized for file names.
//   - now: The time used for the time placeholders.
//
// EXAMPLE:
//
//	format: "{original}_{kind}_{timestamp}"
//	params: {"original": "inbound", "kind": "items"}
//	output: "inbound_items_20240115_143022.csv"
func GenerateOutputFileName(format, ext string, params map[string]string, now time.Time) string {
	replacements := []string{
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements = append(replacements, "{uuid}", uuid.New().String())
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", SanitizeFileName(value))
	}

	result := strings.NewReplacer(replacements...).Replace(format)

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "manifest"
	}
	return base
}

// SanitizeFileName replaces characters that are unsafe in file names.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
