// =============================================================================
// Pallet Manifest Importer - Shared Types
// =============================================================================
//
// This package contains the domain types shared by the ingestion, cleaning,
// validation, export and persistence modules. Keeping them here avoids
// import cycles between those packages.
//
// DATA FLOW:
//   spreadsheet row -> RawRow -> CleanItem -> ImportErrors + ImportSummary
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// CellKind describes what a spreadsheet cell held when it was read.
type CellKind int

const (
	// CellAbsent means the cell was missing or empty.
	CellAbsent CellKind = iota

	// CellString means the cell held text.
	CellString

	// CellNumber means the cell held a numeric value.
	CellNumber
)

// Cell is a free-form spreadsheet value: absent, a string or a number.
// The zero value is an absent cell.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// StringCell returns a cell holding text.
func StringCell(s string) Cell {
	return Cell{Kind: CellString, Str: s}
}

// NumberCell returns a cell holding a number.
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Num: n}
}

// IsAbsent reports whether the cell holds no value.
func (c Cell) IsAbsent() bool {
	return c.Kind == CellAbsent
}

// String returns the textual form of the cell. Absent cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return FormatNumber(c.Num)
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as null, a JSON string or a JSON number.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellString:
		return json.Marshal(c.Str)
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, a string or a number into the cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = Cell{}
	case string:
		*c = StringCell(t)
	case float64:
		*c = NumberCell(t)
	default:
		return fmt.Errorf("cell must be a string, number or null, got %T", v)
	}
	return nil
}

// JSONFloat is a float64 that encodes NaN and infinities as null instead of
// failing the whole document. Decoding null leaves the zero value.
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// FormatNumber renders a float the way spreadsheet text renders it:
// integers without a fraction, everything else in the shortest form.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// =============================================================================
// RAW ROW
// =============================================================================

// RawRow is one manifest line as read from the source file. Fields are
// keyed by the source column headers. A RawRow is never modified after the
// reader produces it.
type RawRow struct {
	Position        string `json:"Position"`
	PositionIdent   string `json:"Position ident"`
	BarCodeNumber   string `json:"BarCodeNumber"`
	PositionDetail  string `json:"Position Detail"`
	IdentNumber     string `json:"IdentNumber"`
	Detail          string `json:"Detail"`
	Type            string `json:"Type"`
	Weight          Cell   `json:"Weight"`
	Unit            Cell   `json:"Unit"`
	QTY             Cell   `json:"QTY"`
	PalletNumber    string `json:"Pallet Number"`
	WorkNumber      string `json:"Work Number"`
	SealNumber      Cell   `json:"Seal Number"`
	ContainerNumber Cell   `json:"ContainerNumber"`
}

// =============================================================================
// CLEAN ITEM
// =============================================================================

// ItemType is the normalized item category.
type ItemType string

const (
	TypeMHL ItemType = "MHL"
	TypeEP  ItemType = "EP"
	TypePD  ItemType = "PD"
)

// DefaultItemType is used when the source type is not recognized.
const DefaultItemType = TypeEP

// ItemTypes lists the recognized item types in display order.
var ItemTypes = []ItemType{TypeMHL, TypeEP, TypePD}

// Unit is the normalized weight unit. Only kilograms are recognized.
type Unit string

const (
	UnitKG   Unit = "kg"
	UnitNone Unit = ""
)

// CleanItem is the validated form of exactly one RawRow.
type CleanItem struct {
	Position        string   `json:"position"`
	PositionIdent   string   `json:"positionIdent"`
	BarCodeNumber   string   `json:"barCodeNumber"`
	PositionDetail  string   `json:"positionDetail"`
	IdentNumber     string   `json:"identNumber"`
	Detail          string   `json:"detail"`
	Type            ItemType `json:"type"`
	Weight          *float64 `json:"weight"` // kg, nil when absent
	Unit            Unit     `json:"unit"`
	Qty             float64  `json:"qty"`
	PalletNumber    string   `json:"palletNumber"`
	WorkNumber      string   `json:"workNumber"`
	SealNumber      *string  `json:"sealNumber,omitempty"`
	ContainerNumber *string  `json:"containerNumber,omitempty"`
}

// LineWeightKg returns weight multiplied by quantity. Absent weight counts as 0.
func (c CleanItem) LineWeightKg() float64 {
	if c.Weight == nil {
		return 0
	}
	return *c.Weight * c.Qty
}

// =============================================================================
// AGGREGATES
// =============================================================================

// ImportErrors collects the data-quality counters of one cleaning pass.
type ImportErrors struct {
	// InvalidNumbers counts rows whose quantity could not be parsed.
	InvalidNumbers int `json:"invalidNumbers"`

	// EmptyUnitWithWeight counts rows with a numeric weight but no recognized unit.
	EmptyUnitWithWeight int `json:"emptyUnitWithWeight"`

	// UnitVariants counts every non-empty raw unit token, lowercased.
	UnitVariants map[string]int `json:"unitVariants"`

	// DuplicateIdent holds identifiers seen more than once and their counts.
	DuplicateIdent map[string]int `json:"duplicateIdent"`
}

// PalletTotals is the rollup of one pallet.
type PalletTotals struct {
	Lines         int     `json:"lines"`
	TotalQty      float64 `json:"totalQty"`
	TotalWeightKg float64 `json:"totalWeightKg"`
}

// MarshalJSON writes non-finite totals as null.
func (p PalletTotals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines         int       `json:"lines"`
		TotalQty      JSONFloat `json:"totalQty"`
		TotalWeightKg JSONFloat `json:"totalWeightKg"`
	}{p.Lines, JSONFloat(p.TotalQty), JSONFloat(p.TotalWeightKg)})
}

// UnknownPallet is the bucket for items without a pallet number.
const UnknownPallet = "UNKNOWN"

// ImportSummary is the batch-wide rollup of one cleaning pass.
type ImportSummary struct {
	Pallets       map[string]PalletTotals `json:"pallets"`
	TotalLines    int                     `json:"totalLines"`
	TotalQty      float64                 `json:"totalQty"`
	TotalWeightKg float64                 `json:"totalWeightKg"`
	Types         map[string]int          `json:"types"`
}

// MarshalJSON writes non-finite totals as null. Line weights are finite on
// their own but weight times quantity, and the sums, can overflow.
func (s ImportSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pallets       map[string]PalletTotals `json:"pallets"`
		TotalLines    int                     `json:"totalLines"`
		TotalQty      JSONFloat               `json:"totalQty"`
		TotalWeightKg JSONFloat               `json:"totalWeightKg"`
		Types         map[string]int          `json:"types"`
	}{s.Pallets, s.TotalLines, JSONFloat(s.TotalQty), JSONFloat(s.TotalWeightKg), s.Types})
}

// PalletKeys returns the pallet numbers in ascending order.
func (s ImportSummary) PalletKeys() []string {
	return SortedKeys(s.Pallets)
}

// SortedKeys returns the keys of a string-keyed map in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
