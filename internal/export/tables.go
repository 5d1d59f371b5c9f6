package export

import (
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
	"github.com/ginjaninja78/pallet-manifest/internal/validation"
)

// Table is a header and its rows. Row values are strings, float64, int,
// *float64 or *string; nil pointers render as empty cells.
type Table struct {
	Header []string
	Rows   [][]interface{}
}

// Sheet names of the report workbook.
const (
	SheetItems    = "Items"
	SheetPallets  = "Pallets"
	SheetTypes    = "Types"
	SheetErrors   = "Errors"
	SheetFindings = "Findings"
)

// ItemsTable lists clean items in import order, with the line weight.
func ItemsTable(items []types.CleanItem) Table {
	t := Table{
		Header: []string{
			manifest.ColPosition,
			manifest.ColPositionIdent,
			manifest.ColBarCodeNumber,
			manifest.ColPositionDetail,
			manifest.ColIdentNumber,
			manifest.ColDetail,
			manifest.ColType,
			manifest.ColWeight,
			manifest.ColUnit,
			manifest.ColQTY,
			manifest.ColPalletNumber,
			manifest.ColWorkNumber,
			manifest.ColSealNumber,
			manifest.ColContainerNumber,
			"Line Weight (kg)",
		},
		Rows: make([][]interface{}, 0, len(items)),
	}

	for _, it := range items {
		t.Rows = append(t.Rows, []interface{}{
			it.Position,
			it.PositionIdent,
			it.BarCodeNumber,
			it.PositionDetail,
			it.IdentNumber,
			it.Detail,
			string(it.Type),
			it.Weight,
			string(it.Unit),
			it.Qty,
			it.PalletNumber,
			it.WorkNumber,
			it.SealNumber,
			it.ContainerNumber,
			it.LineWeightKg(),
		})
	}
	return t
}

// PalletTable lists pallet totals in pallet key order. When maxWeightKg is
// positive an extra column flags pallets above it.
func PalletTable(summary types.ImportSummary, maxWeightKg float64) Table {
	t := Table{
		Header: []string{manifest.ColPalletNumber, "Lines", "Total QTY", "Total Weight (kg)"},
		Rows:   make([][]interface{}, 0, len(summary.Pallets)),
	}
	checkLimit := maxWeightKg > 0
	if checkLimit {
		t.Header = append(t.Header, "Over Limit")
	}

	for _, key := range summary.PalletKeys() {
		p := summary.Pallets[key]
		row := []interface{}{key, p.Lines, p.TotalQty, p.TotalWeightKg}
		if checkLimit {
			over := ""
			if p.TotalWeightKg > maxWeightKg {
				over = "yes"
			}
			row = append(row, over)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TypesTable lists line counts per item type: recognized types first in
// display order, then any other keys in ascending order.
func TypesTable(summary types.ImportSummary) Table {
	t := Table{Header: []string{manifest.ColType, "Lines"}}

	done := make(map[string]bool)
	for _, it := range types.ItemTypes {
		key := string(it)
		if n, ok := summary.Types[key]; ok {
			t.Rows = append(t.Rows, []interface{}{key, n})
			done[key] = true
		}
	}
	for _, key := range types.SortedKeys(summary.Types) {
		if !done[key] {
			t.Rows = append(t.Rows, []interface{}{key, summary.Types[key]})
		}
	}
	return t
}

// ErrorsTable flattens the error counters into metric rows.
func ErrorsTable(errs types.ImportErrors) Table {
	t := Table{
		Header: []string{"Metric", "Key", "Count"},
		Rows: [][]interface{}{
			{"invalidNumbers", "", errs.InvalidNumbers},
			{"emptyUnitWithWeight", "", errs.EmptyUnitWithWeight},
		},
	}
	for _, token := range types.SortedKeys(errs.UnitVariants) {
		t.Rows = append(t.Rows, []interface{}{"unitVariants", token, errs.UnitVariants[token]})
	}
	for _, ident := range types.SortedKeys(errs.DuplicateIdent) {
		t.Rows = append(t.Rows, []interface{}{"duplicateIdent", ident, errs.DuplicateIdent[ident]})
	}
	return t
}

// FindingsTable lists validation findings in report order.
func FindingsTable(result *validation.ValidationResult) Table {
	t := Table{Header: []string{"Row", "Pallet", "Severity", "Rule", "Field", "Value", "Message"}}
	for _, e := range result.Errors {
		var row interface{} = ""
		if e.RowNumber > 0 {
			row = e.RowNumber
		}
		t.Rows = append(t.Rows, []interface{}{row, e.Pallet, e.Severity, e.Rule, e.Field, e.Value, e.Message})
	}
	return t
}

// Report is the content of the report workbook. Errors and Findings are
// optional because a restored import carries neither.
type Report struct {
	Items             []types.CleanItem
	Summary           types.ImportSummary
	Errors            *types.ImportErrors
	Findings          *validation.ValidationResult
	MaxPalletWeightKg float64
}

// Sheets returns the report worksheets in workbook order.
func (r Report) Sheets() []Sheet {
	sheets := []Sheet{
		{Name: SheetItems, Table: ItemsTable(r.Items)},
		{Name: SheetPallets, Table: PalletTable(r.Summary, r.MaxPalletWeightKg)},
		{Name: SheetTypes, Table: TypesTable(r.Summary)},
	}
	if r.Errors != nil {
		sheets = append(sheets, Sheet{Name: SheetErrors, Table: ErrorsTable(*r.Errors)})
	}
	if r.Findings != nil {
		sheets = append(sheets, Sheet{Name: SheetFindings, Table: FindingsTable(r.Findings)})
	}
	return sheets
}
