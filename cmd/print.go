package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ginjaninja78/pallet-manifest/internal/format"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// printSummary writes the pallet, type and error tables of an import.
// errs may be nil after a restore, in which case the error table is omitted.
func printSummary(out io.Writer, summary types.ImportSummary, errs *types.ImportErrors, maxWeightKg float64) {
	fmt.Fprintf(out, "Lines:        %d\n", summary.TotalLines)
	fmt.Fprintf(out, "Total QTY:    %s\n", format.Value(summary.TotalQty))
	fmt.Fprintf(out, "Total weight: %s kg\n", format.Value(summary.TotalWeightKg))
	fmt.Fprintf(out, "Pallets:      %d\n\n", len(summary.Pallets))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PALLET\tLINES\tQTY\tWEIGHT (KG)\t")
	for _, key := range summary.PalletKeys() {
		p := summary.Pallets[key]
		flag := ""
		if maxWeightKg > 0 && p.TotalWeightKg > maxWeightKg {
			flag = "over limit"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			key, p.Lines, format.Value(p.TotalQty), format.Value(p.TotalWeightKg), flag)
	}
	tw.Flush()

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tLINES")
	for _, t := range types.SortedKeys(summary.Types) {
		fmt.Fprintf(tw, "%s\t%d\n", t, summary.Types[t])
	}
	tw.Flush()

	if errs == nil {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Invalid numbers:        %d\n", errs.InvalidNumbers)
	fmt.Fprintf(out, "Weight without unit:    %d\n", errs.EmptyUnitWithWeight)
	if len(errs.UnitVariants) > 0 {
		fmt.Fprintln(out, "Unit variants:")
		for _, u := range types.SortedKeys(errs.UnitVariants) {
			fmt.Fprintf(out, "  %-10s %d\n", u, errs.UnitVariants[u])
		}
	}
	if len(errs.DuplicateIdent) > 0 {
		fmt.Fprintln(out, "Duplicate identifiers:")
		for _, id := range types.SortedKeys(errs.DuplicateIdent) {
			fmt.Fprintf(out, "  %-10s %d\n", id, errs.DuplicateIdent[id])
		}
	}
}
