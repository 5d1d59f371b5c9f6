// =============================================================================
// Pallet Manifest Importer - Check Command
// =============================================================================
//
// This file defines the 'check' command. It validates any number of
// manifest files without touching the current import, so a folder of
// incoming manifests can be screened before one of them is imported.
//
// COMMAND USAGE:
//   manifest check <file-or-dir>... [flags]
//
// PROCESSING PIPELINE:
//   1. Discover manifest files (directories are walked recursively)
//   2. For each file (concurrently, at most one per CPU):
//      a. Read the manifest
//      b. Clean the rows
//      c. Validate against the current pallet weight limit
//   3. Print one line per file and a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/ingest"
	"github.com/ginjaninja78/pallet-manifest/internal/validation"
)

// checkResult is the outcome of checking one file.
type checkResult struct {
	Path       string
	Rows       int
	Pallets    int
	Missing    []string
	Validation *validation.ValidationResult
	Err        error
}

// OK reports whether the file was read, complete, and valid.
func (r checkResult) OK() bool {
	return r.Err == nil && len(r.Missing) == 0 && r.Validation.IsValid
}

// =============================================================================
// CHECK COMMAND DEFINITION
// =============================================================================

var checkCmd = &cobra.Command{
	Use:   "check <file-or-dir>...",
	Short: "Validate manifest files without importing them",
	Long: `The check command reads and validates manifest files without replacing
the current import. Directories are searched recursively for .xlsx, .xlsm,
.csv and .txt files.

Files are checked concurrently. A file fails the check when it cannot be
read, misses required columns, or has error findings (or any finding with
--strict). The command fails when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// =============================================================================
// MAIN CHECK FUNCTION
// =============================================================================

func runCheck(cmd *cobra.Command, paths []string) error {
	startTime := time.Now()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	files, err := discoverManifestFiles(paths)
	if err != nil {
		return fmt.Errorf("failed to discover manifest files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No manifest files found.")
		return nil
	}

	// =========================================================================
	// STEP 2: CHECK FILES CONCURRENTLY
	// =========================================================================

	reader := ingest.NewReader(appConfig.CSV, logger)
	validator := validation.NewValidator(validationOptions(a.importer.Settings().MaxPalletWeightKg()))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	results := make(chan checkResult, len(files))

	for _, file := range files {
		g.Go(func() error {
			results <- checkFile(ctx, reader, validator, file)
			return nil
		})
	}

	g.Wait()
	close(results)

	// =========================================================================
	// STEP 3: COLLECT RESULTS AND PRINT SUMMARY
	// =========================================================================

	collected := make([]checkResult, 0, len(files))
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Path < collected[j].Path })

	var failed int
	for _, r := range collected {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "  ✗ %s: %v\n", r.Path, r.Err)
		case len(r.Missing) > 0:
			fmt.Fprintf(out, "  ✗ %s: missing columns %s\n", r.Path, strings.Join(r.Missing, ", "))
		default:
			mark := "✓"
			if !r.Validation.IsValid {
				mark = "✗"
			}
			fmt.Fprintf(out, "  %s %s: %d row(s), %d pallet(s), %d error(s), %d warning(s)\n",
				mark, r.Path, r.Rows, r.Pallets, r.Validation.ErrorCount, r.Validation.WarningCount)
		}
		if !r.OK() {
			failed++
		}
	}

	fmt.Fprintln(out, "\n=== Check Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(collected))
	fmt.Fprintf(out, "Passed:          %d\n", len(collected)-failed)
	fmt.Fprintf(out, "Failed:          %d\n", failed)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed the check", failed, len(collected))
	}
	return nil
}

// checkFile reads, cleans and validates one manifest.
func checkFile(ctx context.Context, reader *ingest.Reader, validator *validation.Validator, path string) checkResult {
	result := checkResult{Path: path}

	table, err := reader.ReadFile(ctx, path)
	if err != nil {
		result.Err = err
		return result
	}

	result.Missing = table.Missing
	result.Rows = len(table.Rows)

	res := cleaner.Clean(table.Rows)
	result.Pallets = len(res.Summary.Pallets)
	result.Validation = validator.Validate(table.Rows, res)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverManifestFiles expands paths into manifest files.
//
// PARAMETERS:
//   - paths: Files and directories. Files are taken as given, whatever
//     their extension; directories are walked for supported extensions.
//
// RETURNS:
//   - The files in the order they were found.
//   - An error if a path does not exist or a directory cannot be read.
func discoverManifestFiles(paths []string) ([]string, error) {
	var files []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, err := ingest.FormatFor(path); err == nil {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
