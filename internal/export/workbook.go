package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// MaxSheetNameLength is the longest worksheet name Excel accepts.
const MaxSheetNameLength = 31

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name  string
	Table Table
}

// SheetName truncates name to MaxSheetNameLength characters.
func SheetName(name string) string {
	r := []rune(name)
	if len(r) > MaxSheetNameLength {
		return string(r[:MaxSheetNameLength])
	}
	return name
}

// BuildWorkbook creates a workbook with one worksheet per sheet, in order.
// The header is written to the first row and each table row below it.
func BuildWorkbook(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	seen := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := SheetName(sheet.Name)
		if seen[name] {
			f.Close()
			return nil, fmt.Errorf("duplicate sheet name %q", name)
		}
		seen[name] = true

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeTable(f, name, sheet.Table); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeTable(f *excelize.File, sheet string, t Table) error {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}

// cellValue keeps numbers numeric and renders everything else as text.
func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return finite(t)
	case *float64:
		if t == nil {
			return ""
		}
		return finite(*t)
	default:
		return stringify(v)
	}
}

// finite keeps numeric cells numeric. Excel has no infinity, so overflowed
// totals are written as text.
func finite(f float64) interface{} {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return types.FormatNumber(f)
	}
	return f
}

// WriteWorkbook writes the workbook for sheets to w.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	f, err := BuildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook for sheets to path, creating the parent
// directory when needed.
func SaveWorkbook(path string, sheets []Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := BuildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
