// =============================================================================
// Pallet Manifest Importer - Cleaning Pipeline
// =============================================================================
//
// This module turns a batch of raw manifest rows into clean items and
// derives the batch error counters and the pallet summary.
//
// PIPELINE:
//   1. Clean: one CleanItem per RawRow, order preserved
//   2. Count data-quality issues while cleaning
//   3. Summarize: one forward pass over the clean items
//   4. Duplicates: post-filter the identifier counts
//
// Everything here is a pure function of its input. Results are recomputed
// from scratch on every call and never updated incrementally.
//
// =============================================================================

package cleaner

import (
	"strings"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// Result is the outcome of one cleaning pass.
type Result struct {
	// Items holds exactly one clean item per input row, in input order.
	Items []types.CleanItem

	// Errors holds the data-quality counters for the batch.
	Errors types.ImportErrors

	// Summary holds the per-pallet and batch-wide rollup.
	Summary types.ImportSummary
}

// Clean runs the cleaning and aggregation passes over rows.
func Clean(rows []types.RawRow) Result {
	unitBucket := make(map[string]int)
	var invalidNumbers, emptyUnitWithWeight int

	items := make([]types.CleanItem, 0, len(rows))
	for _, r := range rows {
		weight, hasWeight := ToNumber(r.Weight)
		qty, hasQty := ToNumber(r.QTY)
		unit := NormalizeUnit(r.Unit)

		if !hasQty {
			invalidNumbers++
			qty = 0
		}
		if hasWeight && unit == types.UnitNone {
			emptyUnitWithWeight++
		}

		if token := UnitToken(r.Unit); token != "" {
			unitBucket[token]++
		}

		item := types.CleanItem{
			Position:        strings.TrimSpace(r.Position),
			PositionIdent:   strings.TrimSpace(r.PositionIdent),
			BarCodeNumber:   strings.TrimSpace(r.BarCodeNumber),
			PositionDetail:  strings.TrimSpace(r.PositionDetail),
			IdentNumber:     strings.TrimSpace(r.IdentNumber),
			Detail:          strings.TrimSpace(r.Detail),
			Type:            NormalizeType(r.Type),
			Unit:            unit,
			Qty:             qty,
			PalletNumber:    strings.TrimSpace(r.PalletNumber),
			WorkNumber:      strings.TrimSpace(r.WorkNumber),
			SealNumber:      cellText(r.SealNumber),
			ContainerNumber: cellText(r.ContainerNumber),
		}
		if hasWeight {
			w := weight
			item.Weight = &w
		}

		items = append(items, item)
	}

	return Result{
		Items: items,
		Errors: types.ImportErrors{
			InvalidNumbers:      invalidNumbers,
			EmptyUnitWithWeight: emptyUnitWithWeight,
			UnitVariants:        unitBucket,
			DuplicateIdent:      Duplicates(IdentCounts(items)),
		},
		Summary: Summarize(items),
	}
}

// Summarize aggregates clean items into batch and per-pallet totals.
// Items without a pallet number are grouped under types.UnknownPallet.
func Summarize(items []types.CleanItem) types.ImportSummary {
	summary := types.ImportSummary{
		Pallets: make(map[string]types.PalletTotals),
		Types:   make(map[string]int),
	}

	for _, item := range items {
		lineWeight := item.LineWeightKg()

		summary.TotalLines++
		summary.TotalQty += item.Qty
		summary.TotalWeightKg += lineWeight

		key := PalletKey(item.PalletNumber)
		p := summary.Pallets[key]
		p.Lines++
		p.TotalQty += item.Qty
		p.TotalWeightKg += lineWeight
		summary.Pallets[key] = p

		summary.Types[string(item.Type)]++
	}

	return summary
}

// Duplicates keeps the entries of an identifier count map seen more than once.
func Duplicates(counts map[string]int) map[string]int {
	dups := make(map[string]int)
	for ident, n := range counts {
		if n > 1 {
			dups[ident] = n
		}
	}
	return dups
}

// IdentCounts counts non-empty identifiers across clean items.
func IdentCounts(items []types.CleanItem) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		if item.IdentNumber != "" {
			counts[item.IdentNumber]++
		}
	}
	return counts
}

// PalletKey returns the summary key for a pallet number.
func PalletKey(palletNumber string) string {
	if palletNumber == "" {
		return types.UnknownPallet
	}
	return palletNumber
}

// PalletItems returns the items grouped under key, in import order.
func PalletItems(items []types.CleanItem, key string) []types.CleanItem {
	out := make([]types.CleanItem, 0)
	for _, item := range items {
		if PalletKey(item.PalletNumber) == key {
			out = append(out, item)
		}
	}
	return out
}
