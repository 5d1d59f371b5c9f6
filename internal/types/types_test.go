package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellJSON(t *testing.T) {
	row := RawRow{
		Weight: StringCell("1,5"),
		QTY:    NumberCell(3),
		Unit:   Cell{},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "1,5", fields["Weight"])
	assert.Equal(t, float64(3), fields["QTY"])
	assert.Nil(t, fields["Unit"])

	var back RawRow
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row, back)
}

func TestCellJSONNonFinite(t *testing.T) {
	data, err := json.Marshal(NumberCell(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestCellUnmarshalRejectsOtherTypes(t *testing.T) {
	var c Cell
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &c))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", Cell{}.String())
	assert.Equal(t, " kg ", StringCell(" kg ").String())
	assert.Equal(t, "12", NumberCell(12).String())
	assert.Equal(t, "0.25", NumberCell(0.25).String())
}

func TestLineWeightKg(t *testing.T) {
	w := 2.5
	assert.Equal(t, 10.0, CleanItem{Weight: &w, Qty: 4}.LineWeightKg())
	assert.Equal(t, 0.0, CleanItem{Qty: 4}.LineWeightKg())
}

func TestPalletKeysSorted(t *testing.T) {
	s := ImportSummary{Pallets: map[string]PalletTotals{"P2": {}, UnknownPallet: {}, "P10": {}, "P1": {}}}
	assert.Equal(t, []string{"P1", "P10", "P2", UnknownPallet}, s.PalletKeys())
	assert.Empty(t, ImportSummary{}.PalletKeys())
}

func TestSummaryJSONNonFinite(t *testing.T) {
	summary := ImportSummary{
		Pallets: map[string]PalletTotals{
			"P1": {Lines: 1, TotalQty: 1e200, TotalWeightKg: math.Inf(1)},
		},
		TotalLines:    1,
		TotalQty:      1e200,
		TotalWeightKg: math.Inf(1),
		Types:         map[string]int{"EP": 1},
	}

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pallets": {"P1": {"lines": 1, "totalQty": 1e200, "totalWeightKg": null}},
		"totalLines": 1,
		"totalQty": 1e200,
		"totalWeightKg": null,
		"types": {"EP": 1}
	}`, string(data))

	var back ImportSummary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, float64(0), back.TotalWeightKg)
	assert.Equal(t, 1e200, back.Pallets["P1"].TotalQty)
	assert.Equal(t, 1, back.Pallets["P1"].Lines)
}

func TestJSONFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		data, err := json.Marshal(JSONFloat(f))
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	}

	data, err := json.Marshal(JSONFloat(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(data))
}
