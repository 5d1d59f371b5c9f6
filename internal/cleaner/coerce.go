// =============================================================================
// Pallet Manifest Importer - Field Coercion
// =============================================================================
//
// This file contains the field-level coercion rules applied to every raw
// manifest row:
//   - Numeric coercion (weight, quantity)
//   - Unit normalization ("kg" or empty)
//   - Item type normalization (MHL, EP, PD)
//
// None of these functions fail. A value that cannot be coerced degrades to
// "absent" or to a default, and the caller decides whether to count it.
//
// =============================================================================

package cleaner

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// decimalRegex matches a plain decimal literal with optional sign and exponent.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// radixRegex matches unsigned hex, octal and binary integer literals.
var radixRegex = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)

// nbspPlaceholder is the HTML entity some exports write into empty unit cells.
const nbspPlaceholder = "&nbsp;"

// =============================================================================
// NUMERIC COERCION
// =============================================================================

// ToNumber converts a cell to a finite number.
//
// RULES:
//   - Numbers pass through when finite.
//   - Strings are trimmed, thousands-separator commas are removed and the
//     remainder is parsed. A string made only of commas parses as 0.
//   - Absent, empty and unparsable values report ok == false.
func ToNumber(c types.Cell) (float64, bool) {
	switch c.Kind {
	case types.CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, false
		}
		return c.Num, true
	case types.CellString:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return 0, false
		}
		return parseNumber(strings.ReplaceAll(s, ",", ""))
	default:
		return 0, false
	}
}

// parseNumber parses a numeric literal. Whitespace left over after comma
// removal is trimmed; an empty literal is zero.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	if radixRegex.MatchString(s) {
		base := 16
		switch s[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		// Literals wider than 64 bits still convert; only overflow to
		// infinity is rejected.
		n, ok := new(big.Int).SetString(s[2:], base)
		if !ok {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		if math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}

	if !decimalRegex.MatchString(s) {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// =============================================================================
// UNIT NORMALIZATION
// =============================================================================

// UnitToken returns the raw unit as it is recorded in the variant map:
// trimmed and lowercased. Absent cells yield "".
func UnitToken(c types.Cell) string {
	if c.IsAbsent() {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.String()))
}

// ParseUnit normalizes a unit cell and reports whether the raw token was
// recognized. Empty cells and the non-breaking-space placeholder count as
// recognized "no unit".
func ParseUnit(c types.Cell) (types.Unit, bool) {
	switch UnitToken(c) {
	case "", nbspPlaceholder:
		return types.UnitNone, true
	case "kg", "kg.":
		return types.UnitKG, true
	default:
		return types.UnitNone, false
	}
}

// NormalizeUnit maps a unit cell to "kg" or "".
func NormalizeUnit(c types.Cell) types.Unit {
	u, _ := ParseUnit(c)
	return u
}

// =============================================================================
// TYPE NORMALIZATION
// =============================================================================

// ParseType uppercases and trims the raw type and reports whether it is one
// of the recognized item types. Unrecognized values map to DefaultItemType.
func ParseType(raw string) (types.ItemType, bool) {
	s := types.ItemType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range types.ItemTypes {
		if s == t {
			return t, true
		}
	}
	return types.DefaultItemType, false
}

// NormalizeType maps a raw type to MHL, EP or PD, defaulting to EP.
func NormalizeType(raw string) types.ItemType {
	t, _ := ParseType(raw)
	return t
}

// cellText returns the trimmed text of an optional cell, nil when absent.
func cellText(c types.Cell) *string {
	if c.IsAbsent() {
		return nil
	}
	s := strings.TrimSpace(c.String())
	return &s
}
