package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/format"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// summaryJSON prints the summary as JSON instead of tables.
var summaryJSON bool

// summaryPallet lists the items of one pallet.
var summaryPallet string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the summary of the last import",
	Long: `The summary command restores the last import from storage and prints its
pallet and type totals. Use --pallet to list the items of one pallet;
items without a pallet number are listed under UNKNOWN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		state := a.importer.Session().Snapshot()
		if state.Summary == nil {
			return errNoImport
		}

		if summaryPallet != "" {
			return printPallet(cmd, state.Clean, *state.Summary, summaryPallet)
		}

		if summaryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state.Summary)
		}

		printSummary(out, *state.Summary, state.Errors, a.importer.Settings().MaxPalletWeightKg())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	summaryCmd.Flags().StringVar(&summaryPallet, "pallet", "", "List the items of one pallet")
}

func printPallet(cmd *cobra.Command, items []types.CleanItem, summary types.ImportSummary, key string) error {
	totals, ok := summary.Pallets[key]
	if !ok {
		return fmt.Errorf("pallet %q not found", key)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pallet %s: %d line(s), QTY %s, %s kg\n\n",
		key, totals.Lines, format.Value(totals.TotalQty), format.Value(totals.TotalWeightKg))

	for _, item := range cleaner.PalletItems(items, key) {
		fmt.Fprintf(out, "  %-6s %-16s %-4s qty %-8s weight %s\n",
			item.Position, item.IdentNumber, item.Type,
			format.Value(item.Qty), format.Number(item.Weight, format.DefaultDigits))
	}
	return nil
}
