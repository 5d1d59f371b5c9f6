// Package format renders numbers for tables and reports.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultDigits is the fraction digit limit used by the summary views.
const DefaultDigits = 2

// Placeholder is printed for values that are absent or not a number.
const Placeholder = "-"

// Formatter formats numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// New returns a Formatter for the given locale tag.
func New(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = New(language.English)

// Number formats n with thousands grouping and at most digits fraction
// digits. Nil and NaN render as Placeholder.
func (f *Formatter) Number(n *float64, digits int) string {
	if n == nil || math.IsNaN(*n) {
		return Placeholder
	}
	if digits < 0 {
		digits = 0
	}
	return f.printer.Sprint(number.Decimal(*n, number.MaxFractionDigits(digits)))
}

// Value formats a plain value with Number.
func (f *Formatter) Value(v float64, digits int) string {
	return f.Number(&v, digits)
}

// Number formats n in English notation. See Formatter.Number.
func Number(n *float64, digits int) string {
	return defaultFormatter.Number(n, digits)
}

// Value formats v in English notation with DefaultDigits.
func Value(v float64) string {
	return defaultFormatter.Value(v, DefaultDigits)
}
