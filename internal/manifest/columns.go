// =============================================================================
// Pallet Manifest Importer - Manifest Column Layout
// =============================================================================
//
// This module knows the column layout of a manifest export. Both the XLSX
// and the CSV readers hand it a grid of cell strings; it resolves the header
// row once and then maps every body row positionally.
//
// MANIFEST STRUCTURE (header text must match exactly):
//
//   | Position | Position ident | BarCodeNumber | Position Detail | IdentNumber |
//   | Detail   | Type           | Weight        | Unit            | QTY         |
//   | Pallet Number | Work Number | Seal Number (optional) | ContainerNumber (optional) |
//
// MISSING COLUMNS:
//   A missing required column is not an error. The table comes back empty
//   with the missing names listed, and the caller logs the diagnostic.
//
// =============================================================================

package manifest

import (
	"strings"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

const (
	ColPosition        = "Position"
	ColPositionIdent   = "Position ident"
	ColBarCodeNumber   = "BarCodeNumber"
	ColPositionDetail  = "Position Detail"
	ColIdentNumber     = "IdentNumber"
	ColDetail          = "Detail"
	ColType            = "Type"
	ColWeight          = "Weight"
	ColUnit            = "Unit"
	ColQTY             = "QTY"
	ColPalletNumber    = "Pallet Number"
	ColWorkNumber      = "Work Number"
	ColSealNumber      = "Seal Number"
	ColContainerNumber = "ContainerNumber"
)

// RequiredColumns lists the headers every manifest must carry, in report order.
var RequiredColumns = []string{
	ColPosition,
	ColPositionIdent,
	ColBarCodeNumber,
	ColPositionDetail,
	ColIdentNumber,
	ColDetail,
	ColType,
	ColWeight,
	ColUnit,
	ColQTY,
	ColPalletNumber,
	ColWorkNumber,
}

// OptionalColumns lists headers that are read when present.
var OptionalColumns = []string{
	ColSealNumber,
	ColContainerNumber,
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// Columns holds the 0-based position of every manifest column.
// A value of -1 means the column is not present.
type Columns struct {
	Position        int
	PositionIdent   int
	BarCodeNumber   int
	PositionDetail  int
	IdentNumber     int
	Detail          int
	Type            int
	Weight          int
	Unit            int
	QTY             int
	PalletNumber    int
	WorkNumber      int
	SealNumber      int
	ContainerNumber int
}

// ResolveColumns finds each manifest column in the header row.
//
// PARAMETERS:
//   - header: The header cells. Each cell is trimmed before comparison.
//
// RETURNS:
//   - The resolved column positions. The first matching header wins.
//   - The names of the required columns that were not found, in
//     RequiredColumns order. Empty when the header is complete.
func ResolveColumns(header []string) (Columns, []string) {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}

	idx := func(name string) int {
		for i, h := range trimmed {
			if h == name {
				return i
			}
		}
		return -1
	}

	cols := Columns{
		Position:        idx(ColPosition),
		PositionIdent:   idx(ColPositionIdent),
		BarCodeNumber:   idx(ColBarCodeNumber),
		PositionDetail:  idx(ColPositionDetail),
		IdentNumber:     idx(ColIdentNumber),
		Detail:          idx(ColDetail),
		Type:            idx(ColType),
		Weight:          idx(ColWeight),
		Unit:            idx(ColUnit),
		QTY:             idx(ColQTY),
		PalletNumber:    idx(ColPalletNumber),
		WorkNumber:      idx(ColWorkNumber),
		SealNumber:      idx(ColSealNumber),
		ContainerNumber: idx(ColContainerNumber),
	}

	var missing []string
	for _, name := range RequiredColumns {
		if idx(name) < 0 {
			missing = append(missing, name)
		}
	}

	return cols, missing
}

// Row maps one body row to a RawRow by column position.
//
// MAPPING RULES:
//   - Text columns are trimmed; missing cells become "".
//   - Weight, Unit, Seal Number and ContainerNumber become absent when the
//     cell is missing or blank.
//   - QTY keeps the cell text untouched so the cleaner can count it as
//     invalid when it is blank.
func (c Columns) Row(cells []string) types.RawRow {
	get := func(index int) string {
		if index >= 0 && index < len(cells) {
			return cells[index]
		}
		return ""
	}
	text := func(index int) string {
		return strings.TrimSpace(get(index))
	}
	optional := func(index int) types.Cell {
		if s := text(index); s != "" {
			return types.StringCell(s)
		}
		return types.Cell{}
	}

	return types.RawRow{
		Position:        text(c.Position),
		PositionIdent:   text(c.PositionIdent),
		BarCodeNumber:   text(c.BarCodeNumber),
		PositionDetail:  text(c.PositionDetail),
		IdentNumber:     text(c.IdentNumber),
		Detail:          text(c.Detail),
		Type:            text(c.Type),
		Weight:          optional(c.Weight),
		Unit:            optional(c.Unit),
		QTY:             types.StringCell(get(c.QTY)),
		PalletNumber:    text(c.PalletNumber),
		WorkNumber:      text(c.WorkNumber),
		SealNumber:      optional(c.SealNumber),
		ContainerNumber: optional(c.ContainerNumber),
	}
}

// IsRowEmpty checks if a row contains only blank cells.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
