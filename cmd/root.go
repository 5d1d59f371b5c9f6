// =============================================================================
// Pallet Manifest Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (manifest)
//   ├── importCmd   (manifest import <file>)
//   ├── checkCmd    (manifest check <path>...)
//   ├── summaryCmd  (manifest summary)
//   ├── exportCmd   (manifest export csv|xlsx|xml)
//   ├── settingsCmd (manifest settings get|set-max-weight)
//   ├── serveCmd    (manifest serve; JSON API plus /api/export/items.csv,
//   │                report.xlsx and items.xml)
//   ├── configCmd   (manifest config show|init)
//   └── versionCmd  (manifest version)
//
// CONFIGURATION:
//   The root command loads the configuration (internal/config) and builds
//   the logger (internal/logging) before any subcommand runs. Logs go to
//   stderr; command output goes to stdout.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
	"github.com/ginjaninja78/pallet-manifest/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds an explicit configuration file. When empty, manifest.yaml
// in the working directory is used if present.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// noPersist keeps the session in memory for this run only.
var noPersist bool

// strict treats warning findings as errors.
var strict bool

// overweightIsError reports pallets above the weight limit as errors.
var overweightIsError bool

// appConfig and logger are set by PersistentPreRunE.
var (
	appConfig *config.Config
	logger    = zerolog.Nop()
)

// skipConfig marks commands that must run without loading the configuration.
const skipConfig = "skip-config"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Pallet Manifest Importer - Clean and summarize warehouse pallet manifests",
	Long: `Pallet Manifest Importer reads pallet manifests exported from the
warehouse system (XLSX or CSV), cleans every line item, and summarizes the
result by pallet and item type.

Key Features:
  - Tolerant import: bad values are counted, never fatal
  - Pallet and type totals with a configurable pallet weight limit
  - Validation report with per-row and per-pallet findings
  - CSV and XLSX exports
  - The last import is kept between runs (file or sqlite storage)
  - Optional HTTP server exposing the same operations

Example Usage:
  manifest import inbound.xlsx         # Import and summarize a manifest
  manifest summary                     # Show the last imported summary
  manifest export xlsx --out ./reports # Write the report workbook
  manifest check ./incoming            # Validate every manifest in a folder`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			logger = logging.New(config.Default().Logging, verbose, cmd.ErrOrStderr())
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if noPersist {
			cfg.Storage.Type = config.StorageMemory
		}

		appConfig = cfg
		logger = logging.New(cfg.Logging, verbose, cmd.ErrOrStderr())
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is ./manifest.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().BoolVar(
		&noPersist,
		"no-persist",
		false,
		"Keep the import in memory for this run only",
	)

	rootCmd.PersistentFlags().BoolVar(
		&strict,
		"strict",
		false,
		"Treat validation warnings as errors",
	)

	rootCmd.PersistentFlags().BoolVar(
		&overweightIsError,
		"overweight-error",
		false,
		"Report pallets above the weight limit as errors instead of warnings",
	)
}
