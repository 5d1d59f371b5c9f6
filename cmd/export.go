package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/export"
	"github.com/ginjaninja78/pallet-manifest/internal/xmlwriter"
	"github.com/ginjaninja78/pallet-manifest/pkg/utils"
)

// exportDir overrides export.output_dir.
var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export csv|xlsx|xml",
	Short: "Export the last import",
	Long: `The export command writes the last import to the export directory.

  csv   the clean line items, one row per item
  xlsx  the report workbook with Items, Pallets, Types, Errors and Findings
        sheets
  xml   the clean items grouped by pallet

File names follow export.file_name_format in the configuration.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"csv", "xlsx", "xml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		state := a.importer.Session().Snapshot()
		if !state.HasData() {
			return errNoImport
		}

		dir := appConfig.Export.OutputDir
		if exportDir != "" {
			dir = exportDir
		}
		fm := utils.NewFileManager(dir, appConfig.Export.FileNameFormat)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}

		var path string
		switch args[0] {
		case "csv":
			path = fm.OutputPath("items", state.Source, ".csv")
			err = writeItemsCSV(path, export.ItemsTable(state.Clean))
		case "xlsx":
			path = fm.OutputPath("report", state.Source, ".xlsx")
			err = export.SaveWorkbook(path, a.importer.Report().Sheets())
		case "xml":
			path = fm.OutputPath("items", state.Source, ".xml")
			report := a.importer.Report()
			err = os.WriteFile(path, xmlwriter.Generate(report.Items, report.Summary), 0644)
		}
		if err != nil {
			return err
		}

		logger.Info().Str("path", path).Msg("export written")
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "out", "", "Output directory (default is export.output_dir)")
}

func writeItemsCSV(path string, table export.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := export.WriteCSV(file, table); err != nil {
		return err
	}
	return file.Close()
}
