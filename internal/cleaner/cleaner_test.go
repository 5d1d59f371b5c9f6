package cleaner

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

func row(ident, pallet, qty, weight, unit, typ string) types.RawRow {
	r := types.RawRow{
		IdentNumber:  ident,
		PalletNumber: pallet,
		QTY:          types.StringCell(qty),
		Type:         typ,
	}
	if weight != "" {
		r.Weight = types.StringCell(weight)
	}
	if unit != "" {
		r.Unit = types.StringCell(unit)
	}
	return r
}

func TestCleanPreservesOrderAndCount(t *testing.T) {
	rows := make([]types.RawRow, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, row(fmt.Sprintf("ID-%02d", i), "P1", "1", "", "", "EP"))
	}

	res := Clean(rows)

	require.Len(t, res.Items, len(rows))
	for i, item := range res.Items {
		assert.Equal(t, fmt.Sprintf("ID-%02d", i), item.IdentNumber)
	}
}

func TestCleanEmptyBatch(t *testing.T) {
	res := Clean(nil)

	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Summary.TotalLines)
	assert.NotNil(t, res.Summary.Pallets)
	assert.NotNil(t, res.Errors.UnitVariants)
	assert.NotNil(t, res.Errors.DuplicateIdent)
}

func TestCleanTrimsAndNormalizes(t *testing.T) {
	rows := []types.RawRow{{
		Position:        " 10 ",
		PositionIdent:   " A ",
		BarCodeNumber:   " 123 ",
		PositionDetail:  " top ",
		IdentNumber:     " X1 ",
		Detail:          " bolts ",
		Type:            " mhl ",
		Weight:          types.StringCell("1,250.5"),
		Unit:            types.StringCell("KG."),
		QTY:             types.NumberCell(2),
		PalletNumber:    " P-7 ",
		WorkNumber:      " W1 ",
		SealNumber:      types.StringCell(" S9 "),
		ContainerNumber: types.Cell{},
	}}

	res := Clean(rows)
	require.Len(t, res.Items, 1)

	weight := 1250.5
	seal := "S9"
	want := types.CleanItem{
		Position:       "10",
		PositionIdent:  "A",
		BarCodeNumber:  "123",
		PositionDetail: "top",
		IdentNumber:    "X1",
		Detail:         "bolts",
		Type:           types.TypeMHL,
		Weight:         &weight,
		Unit:           types.UnitKG,
		Qty:            2,
		PalletNumber:   "P-7",
		WorkNumber:     "W1",
		SealNumber:     &seal,
	}
	if diff := cmp.Diff(want, res.Items[0]); diff != "" {
		t.Errorf("clean item mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanCounters(t *testing.T) {
	rows := []types.RawRow{
		row("A", "P1", "abc", "5", "kg", "EP"),
		row("B", "P1", "", "5", "", "EP"),
		row("C", "P1", "1", "5", "lb", "EP"),
		row("D", "P1", "1", "", "lb", "EP"),
		row("E", "P1", "1", "x", "", "EP"),
	}

	res := Clean(rows)

	assert.Equal(t, 2, res.Errors.InvalidNumbers)
	assert.Equal(t, 2, res.Errors.EmptyUnitWithWeight)
	assert.Equal(t, map[string]int{"kg": 1, "lb": 2}, res.Errors.UnitVariants)

	assert.Equal(t, float64(0), res.Items[0].Qty)
	assert.Equal(t, float64(0), res.Items[1].Qty)
	assert.Nil(t, res.Items[4].Weight)
}

func TestCleanNonBreakingSpaceUnit(t *testing.T) {
	rows := []types.RawRow{
		row("A", "P1", "1", "5", "\u00a0", "EP"),
		row("B", "P1", "1", "", "\u00a0", "EP"),
	}

	res := Clean(rows)

	assert.Empty(t, res.Errors.UnitVariants)
	assert.Equal(t, 1, res.Errors.EmptyUnitWithWeight)
	assert.Equal(t, types.UnitNone, res.Items[0].Unit)
	assert.Equal(t, types.UnitNone, res.Items[1].Unit)
}

func TestSummarizePalletTotals(t *testing.T) {
	rows := []types.RawRow{
		row("A", "P1", "2", "5", "kg", "EP"),
		row("B", "P1", "1", "3", "kg", "PD"),
		row("C", "", "4", "", "", "mhl"),
	}

	res := Clean(rows)

	want := types.ImportSummary{
		Pallets: map[string]types.PalletTotals{
			"P1":                {Lines: 2, TotalQty: 3, TotalWeightKg: 13},
			types.UnknownPallet: {Lines: 1, TotalQty: 4, TotalWeightKg: 0},
		},
		TotalLines:    3,
		TotalQty:      7,
		TotalWeightKg: 13,
		Types:         map[string]int{"EP": 1, "PD": 1, "MHL": 1},
	}
	if diff := cmp.Diff(want, res.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateIdentifiers(t *testing.T) {
	rows := []types.RawRow{
		row("A1", "P1", "1", "", "", "EP"),
		row("A1", "P1", "1", "", "", "EP"),
		row(" A1 ", "P2", "1", "", "", "EP"),
		row("A2", "P2", "1", "", "", "EP"),
		row("", "P2", "1", "", "", "EP"),
		row("", "P2", "1", "", "", "EP"),
	}

	res := Clean(rows)

	assert.Equal(t, map[string]int{"A1": 3}, res.Errors.DuplicateIdent)
	assert.Equal(t, map[string]int{"A1": 3, "A2": 1}, IdentCounts(res.Items))
}

func TestSummarizeIsRecomputedFromScratch(t *testing.T) {
	rows := []types.RawRow{row("A", "P1", "2", "5", "kg", "EP")}

	first := Clean(rows)
	second := Clean(rows)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 1, second.Summary.TotalLines)
}

func TestPalletItems(t *testing.T) {
	res := Clean([]types.RawRow{
		row("A", "P1", "1", "", "", "EP"),
		row("B", "", "1", "", "", "EP"),
		row("C", "P1", "1", "", "", "EP"),
	})

	p1 := PalletItems(res.Items, "P1")
	require.Len(t, p1, 2)
	assert.Equal(t, "C", p1[1].IdentNumber)

	unknown := PalletItems(res.Items, types.UnknownPallet)
	require.Len(t, unknown, 1)
	assert.Equal(t, "B", unknown[0].IdentNumber)

	assert.Empty(t, PalletItems(res.Items, "P9"))
}
