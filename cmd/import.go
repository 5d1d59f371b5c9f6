// =============================================================================
// Pallet Manifest Importer - Import Command
// =============================================================================
//
// This file defines the 'import' command, the main command of the tool. It
// replaces the current session with the rows of one manifest file.
//
// COMMAND USAGE:
//   manifest import <file> [flags]
//
// FLAGS:
//   --report     : Print every validation finding
//   --error-log  : Write the validation report to a file
//
// PROCESSING PIPELINE:
//   1. Read the manifest (XLSX or CSV, chosen by extension)
//   2. Clean every row and aggregate the summary
//   3. Persist the clean items and the summary
//   4. Validate and print the summary tables
//
// A manifest with missing columns is not an error: the session is emptied
// and the missing column names are printed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// printReport prints every finding after the summary.
var printReport bool

// errorLogPath is where the validation report is written, if set.
var errorLogPath string

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a manifest and print its summary",
	Long: `The import command reads a manifest (.xlsx, .xlsm, .csv or .txt), cleans
every line item, stores the result as the current import, and prints the
pallet and type summary.

Values that cannot be read are counted rather than rejected:
  - an unreadable QTY becomes 0 and is counted as an invalid number
  - a weight without a kg unit is counted
  - an unknown Type is read as EP

Use --report to list every finding, or --error-log to write them to a file.
With --strict, any finding makes the command fail after the import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(
		&printReport,
		"report",
		false,
		"Print every validation finding",
	)

	importCmd.Flags().StringVar(
		&errorLogPath,
		"error-log",
		"",
		"Write the validation report to this file",
	)
}

// =============================================================================
// MAIN IMPORT FUNCTION
// =============================================================================

func runImport(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}

	if !result.OK() {
		fmt.Fprintf(out, "%s is missing required columns: %s\n", result.Source, strings.Join(result.Missing, ", "))
		fmt.Fprintln(out, "Nothing was imported.")
		return nil
	}

	fmt.Fprintf(out, "Imported %s (%s, batch %s)\n\n", result.Source, result.Format, result.BatchID)
	printSummary(out, result.Clean.Summary, &result.Clean.Errors, a.importer.Settings().MaxPalletWeightKg())

	v := result.Validation
	fmt.Fprintf(out, "\nFindings: %d error(s), %d warning(s)\n", v.ErrorCount, v.WarningCount)
	if printReport {
		fmt.Fprintln(out)
		fmt.Fprintln(out, validation.FormatErrors(v.Errors))
	}

	if errorLogPath != "" {
		if err := validation.WriteErrorLog(v, result.Source, errorLogPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Validation report written to %s\n", errorLogPath)
	}

	if !v.IsValid {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", v.ErrorCount, v.WarningCount)
	}
	return nil
}
