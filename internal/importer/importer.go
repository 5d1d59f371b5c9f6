// =============================================================================
// Pallet Manifest Importer - Import Pipeline
// =============================================================================
//
// This module orchestrates one import from manifest file to session state.
// The CLI and the HTTP server both go through it.
//
// IMPORT PIPELINE:
//   1. Read the manifest (XLSX or CSV, chosen by extension)
//   2. Replace the session's raw rows
//   3. Clean, summarize and persist through the session
//   4. Validate the result against the current settings
//
// A manifest with missing columns is not a failure: the pipeline still runs
// on the empty row set, so the session ends up empty and the result lists
// the missing columns.
//
// =============================================================================

package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/export"
	"github.com/ginjaninja78/pallet-manifest/internal/ingest"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
	"github.com/ginjaninja78/pallet-manifest/internal/session"
	"github.com/ginjaninja78/pallet-manifest/internal/settings"
	"github.com/ginjaninja78/pallet-manifest/internal/validation"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of importing one manifest.
type Result struct {
	// BatchID identifies the import in logs.
	BatchID string `json:"batchId"`

	// Source is the file or upload name.
	Source string `json:"source"`

	// Format is the reader that was used.
	Format manifest.Format `json:"format"`

	// Missing lists required columns absent from the header.
	Missing []string `json:"missingColumns,omitempty"`

	// Clean is the cleaning pass output.
	Clean cleaner.Result `json:"-"`

	// Validation holds the findings for the import.
	Validation *validation.ValidationResult `json:"validation"`

	// Stats contains import statistics.
	Stats Stats `json:"stats"`
}

// OK reports whether the manifest header was complete.
func (r *Result) OK() bool {
	return len(r.Missing) == 0
}

// Stats contains statistics about one import.
type Stats struct {
	RowsRead       int           `json:"rowsRead"`
	SkippedEmpty   int           `json:"skippedEmpty"`
	Pallets        int           `json:"pallets"`
	Findings       int           `json:"findings"`
	ProcessingTime time.Duration `json:"processingTimeNs"`
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Options tune validation.
type Options struct {
	OverweightIsError     bool
	TreatWarningsAsErrors bool
}

// Importer runs imports against one session.
type Importer struct {
	reader   *ingest.Reader
	session  *session.Session
	settings *settings.Manager
	options  Options
	logger   zerolog.Logger
}

// New creates an Importer.
//
// PARAMETERS:
//   - reader: Reads manifest files.
//   - sess: Receives the rows and persists the outcome.
//   - mgr: Supplies the pallet weight limit for validation.
//   - options: Validation options.
//   - logger: Receives progress and diagnostics.
func New(reader *ingest.Reader, sess *session.Session, mgr *settings.Manager, options Options, logger zerolog.Logger) *Importer {
	return &Importer{
		reader:   reader,
		session:  sess,
		settings: mgr,
		options:  options,
		logger:   logger.With().Str("component", "importer").Logger(),
	}
}

// Session returns the session the importer writes to.
func (im *Importer) Session() *session.Session { return im.session }

// Settings returns the settings manager.
func (im *Importer) Settings() *settings.Manager { return im.settings }

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Import reads a manifest from r and makes it the current import.
//
// RETURNS:
//   - The import result.
//   - An error if the manifest could not be read. The session is left
//     unchanged in that case.
func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		BatchID: uuid.New().String(),
		Source:  name,
	}
	logger := im.logger.With().Str("batch", result.BatchID).Str("file", name).Logger()

	// =========================================================================
	// STEP 1: READ THE MANIFEST
	// =========================================================================

	logger.Info().Msg("importing manifest")

	table, err := im.reader.Read(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
	}

	result.Format = table.Format
	result.Missing = table.Missing
	result.Stats.RowsRead = len(table.Rows)
	result.Stats.SkippedEmpty = table.SkippedEmpty

	// =========================================================================
	// STEP 2-3: REPLACE, CLEAN AND PERSIST
	// =========================================================================

	im.session.SetRaw(table.Rows)
	im.session.SetSource(name)
	result.Clean = im.session.CleanAndValidate(ctx)
	result.Stats.Pallets = len(result.Clean.Summary.Pallets)

	// =========================================================================
	// STEP 4: VALIDATE
	// =========================================================================

	result.Validation = im.validator().Validate(table.Rows, result.Clean)
	result.Stats.Findings = len(result.Validation.Errors)
	result.Stats.ProcessingTime = time.Since(startTime)

	logger.Info().
		Int("rows", result.Stats.RowsRead).
		Int("pallets", result.Stats.Pallets).
		Int("findings", result.Stats.Findings).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("manifest imported")

	return result, nil
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	if _, err := ingest.FormatFor(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return im.Import(ctx, filepath.Base(path), file)
}

// Validate checks the current session state against the current settings.
// After a restore only pallet-level checks apply, since the raw rows are not
// persisted.
func (im *Importer) Validate() *validation.ValidationResult {
	state := im.session.Snapshot()
	return im.validator().Validate(state.Raw, resultOf(state))
}

// Report returns the content of the report workbook for the current session.
func (im *Importer) Report() export.Report {
	state := im.session.Snapshot()
	res := resultOf(state)

	return export.Report{
		Items:             res.Items,
		Summary:           res.Summary,
		Errors:            state.Errors,
		Findings:          im.validator().Validate(state.Raw, res),
		MaxPalletWeightKg: im.settings.MaxPalletWeightKg(),
	}
}

func (im *Importer) validator() *validation.Validator {
	return validation.NewValidator(validation.ValidationOptions{
		MaxPalletWeightKg:     im.settings.MaxPalletWeightKg(),
		OverweightIsError:     im.options.OverweightIsError,
		TreatWarningsAsErrors: im.options.TreatWarningsAsErrors,
	})
}

// resultOf rebuilds a cleaning result from session state. A missing summary
// is recomputed from the clean items.
func resultOf(state session.State) cleaner.Result {
	res := cleaner.Result{Items: state.Clean}
	if state.Errors != nil {
		res.Errors = *state.Errors
	}
	if state.Summary != nil {
		res.Summary = *state.Summary
	} else {
		res.Summary = cleaner.Summarize(state.Clean)
	}
	return res
}
