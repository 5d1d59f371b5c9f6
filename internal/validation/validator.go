// =============================================================================
// Pallet Manifest Importer - Validation Report
// =============================================================================
//
// This module explains a cleaning pass. The cleaner never rejects a row: it
// applies silent defaults (unparsable QTY becomes 0, unknown types become EP,
// unknown units become empty). The validator revisits the raw rows next to
// their clean items and records every default it finds, so an operator can
// see which rows were changed and why.
//
// VALIDATION LEVELS:
//   1. Row-level: quantity, weight, unit, type and duplicate identifiers
//   2. Pallet-level: total pallet weight against the configured limit
//
// SEVERITY:
//   Row findings are always warnings. An overweight pallet is a warning
//   unless OverweightIsError is set. TreatWarningsAsErrors marks the result
//   invalid whenever any warning is present.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleQtyNumeric      = "qty_numeric"
	RuleWeightNumeric   = "weight_numeric"
	RuleUnitRequired    = "unit_required"
	RuleUnitKnown       = "unit_known"
	RuleTypeKnown       = "type_known"
	RuleDuplicateIdent  = "duplicate_ident"
	RuleMaxPalletWeight = "max_pallet_weight"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string `json:"severity"`

	// Field is the manifest column the finding is about.
	Field string `json:"field"`

	// Value is the raw value that triggered the finding.
	Value string `json:"value"`

	// Rule is the rule that produced the finding.
	Rule string `json:"rule"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// RowNumber is the 1-based position of the item in the import.
	// Zero for pallet-level findings.
	RowNumber int `json:"rowNumber,omitempty"`

	// Pallet is the pallet key the finding belongs to.
	Pallet string `json:"pallet,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var where string
	if e.RowNumber > 0 {
		where = fmt.Sprintf("Row %d", e.RowNumber)
	} else {
		where = fmt.Sprintf("Pallet '%s'", e.Pallet)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		where,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the findings of one validation run.
type ValidationResult struct {
	// IsValid is true if there are no error-severity findings, and no
	// warnings when warnings are treated as errors.
	IsValid bool `json:"isValid"`

	Errors []*ValidationError `json:"errors"`

	ErrorCount   int `json:"errorCount"`
	WarningCount int `json:"warningCount"`

	RowsValidated    int `json:"rowsValidated"`
	PalletsValidated int `json:"palletsValidated"`
}

// RuleCounts returns the number of findings per rule.
func (r *ValidationResult) RuleCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Errors {
		counts[e.Rule]++
	}
	return counts
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// MaxPalletWeightKg is the pallet weight limit. Zero disables the check.
	MaxPalletWeightKg float64

	// OverweightIsError reports overweight pallets with error severity.
	// Default: false
	OverweightIsError bool

	// TreatWarningsAsErrors marks the result invalid when any warning exists.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator checks cleaning results.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with the given options.
func NewValidator(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// Validate checks a cleaning result against the rows it was produced from.
//
// PARAMETERS:
//   - rows: The raw rows passed to cleaner.Clean.
//   - res: The result of cleaning rows.
//
// RETURNS:
//   - The findings, row-level first in row order, then pallet-level in
//     pallet key order.
func (v *Validator) Validate(rows []types.RawRow, res cleaner.Result) *ValidationResult {
	result := &ValidationResult{
		IsValid:          true,
		Errors:           make([]*ValidationError, 0),
		RowsValidated:    len(rows),
		PalletsValidated: len(res.Summary.Pallets),
	}

	for i, row := range rows {
		if i >= len(res.Items) {
			break
		}
		for _, finding := range v.validateRow(i+1, row, res.Items[i], res.Errors.DuplicateIdent) {
			result.add(finding, v.options)
		}
	}

	for _, finding := range v.validatePallets(res.Summary) {
		result.add(finding, v.options)
	}

	return result
}

func (r *ValidationResult) add(e *ValidationError, options ValidationOptions) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if options.TreatWarningsAsErrors {
		r.IsValid = false
	}
}

// validateRow compares one raw row with its clean item.
func (v *Validator) validateRow(rowNumber int, row types.RawRow, item types.CleanItem, duplicates map[string]int) []*ValidationError {
	var errors []*ValidationError

	warn := func(field, value, rule, message string) {
		errors = append(errors, &ValidationError{
			Severity:  SeverityWarning,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   message,
			RowNumber: rowNumber,
			Pallet:    cleaner.PalletKey(item.PalletNumber),
		})
	}

	if _, ok := cleaner.ToNumber(row.QTY); !ok {
		warn(manifest.ColQTY, row.QTY.String(), RuleQtyNumeric, "quantity is not a number, counted as 0")
	}

	if item.Weight == nil && strings.TrimSpace(row.Weight.String()) != "" {
		warn(manifest.ColWeight, row.Weight.String(), RuleWeightNumeric, "weight is not a number, treated as missing")
	}

	if _, recognized := cleaner.ParseUnit(row.Unit); !recognized {
		warn(manifest.ColUnit, row.Unit.String(), RuleUnitKnown, "unit is not recognized, treated as empty")
	}

	if item.Weight != nil && item.Unit == types.UnitNone {
		warn(manifest.ColUnit, row.Unit.String(), RuleUnitRequired,
			fmt.Sprintf("weight %s has no unit", types.FormatNumber(*item.Weight)))
	}

	if _, recognized := cleaner.ParseType(row.Type); !recognized {
		warn(manifest.ColType, row.Type, RuleTypeKnown,
			fmt.Sprintf("type is not recognized, defaulted to %s", types.DefaultItemType))
	}

	ident := strings.TrimSpace(item.IdentNumber)
	if n, dup := duplicates[ident]; dup {
		warn(manifest.ColIdentNumber, ident, RuleDuplicateIdent,
			fmt.Sprintf("identifier appears %d times", n))
	}

	return errors
}

// validatePallets checks pallet totals against the weight limit.
func (v *Validator) validatePallets(summary types.ImportSummary) []*ValidationError {
	limit := v.options.MaxPalletWeightKg
	if limit <= 0 {
		return nil
	}

	severity := SeverityWarning
	if v.options.OverweightIsError {
		severity = SeverityError
	}

	var errors []*ValidationError
	for _, key := range summary.PalletKeys() {
		totals := summary.Pallets[key]
		if totals.TotalWeightKg <= limit {
			continue
		}
		errors = append(errors, &ValidationError{
			Severity: severity,
			Field:    manifest.ColWeight,
			Value:    types.FormatNumber(totals.TotalWeightKg),
			Rule:     RuleMaxPalletWeight,
			Message: fmt.Sprintf("pallet weighs %s kg, limit is %s kg",
				types.FormatNumber(totals.TotalWeightKg), types.FormatNumber(limit)),
			Pallet: key,
		})
	}
	return errors
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A numbered list, or a single line when there is nothing to report.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation findings."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes a validation result to a text file.
//
// PARAMETERS:
//   - result: The validation result to write.
//   - source: The manifest the result belongs to, written in the header.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(result *ValidationResult, source, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Manifest:  %s\n", source)
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Rows: %d  Pallets: %d  Errors: %d  Warnings: %d\n\n",
		result.RowsValidated, result.PalletsValidated, result.ErrorCount, result.WarningCount)
	writer.WriteString(FormatErrors(result.Errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return file.Close()
}
