// =============================================================================
// Pallet Manifest Importer - CSV Export
// =============================================================================
//
// CSV output follows the rules the downstream warehouse tools already read:
//   - A value is quoted only when it contains a comma, a double quote or a
//     line feed; inner quotes are doubled.
//   - Lines are joined with "\n" and the file has no trailing newline.
//
// encoding/csv always terminates records and also quotes on carriage returns
// and leading spaces, which would change these files byte for byte.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// CSVValue renders one value as a CSV field.
func CSVValue(v interface{}) string {
	s := stringify(v)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// stringify renders a cell value. Nil renders empty; numbers use the
// shortest decimal form.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return types.FormatNumber(t)
	case *float64:
		if t == nil {
			return ""
		}
		return types.FormatNumber(*t)
	case int:
		return fmt.Sprint(t)
	case types.Cell:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// CSV renders a header and rows as CSV text.
func CSV(header []string, rows [][]interface{}) string {
	lines := make([]string, 0, len(rows)+1)

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = CSVValue(h)
	}
	lines = append(lines, strings.Join(fields, ","))

	for _, row := range rows {
		fields = fields[:0]
		for _, v := range row {
			fields = append(fields, CSVValue(v))
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return strings.Join(lines, "\n")
}

// WriteCSV writes a table as CSV to w.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, CSV(t.Header, t.Rows)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
