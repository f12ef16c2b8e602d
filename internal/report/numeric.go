package report

import (
	"fmt"
	"strconv"
	"strings"
)

// NumericFormat selects the decimal-separator convention of a report. The
// format applies to the whole document and is chosen by the user up
// front; there is no auto-detection and mixed-format documents are not
// supported.
type NumericFormat string

const (
	// FormatCommaDecimal is the European convention: dots separate
	// thousands, a comma separates decimals ("1.234,5").
	FormatCommaDecimal NumericFormat = "comma"

	// FormatDotDecimal is the US convention: commas separate thousands,
	// a dot separates decimals ("1,234.5").
	FormatDotDecimal NumericFormat = "dot"
)

// IsValid checks if the format is one of the two known conventions
func (f NumericFormat) IsValid() bool {
	return f == FormatCommaDecimal || f == FormatDotDecimal
}

// ParseNumericFormat converts a string to a NumericFormat
func ParseNumericFormat(s string) (NumericFormat, bool) {
	f := NumericFormat(strings.ToLower(strings.TrimSpace(s)))
	return f, f.IsValid()
}

// NormalizeNumber rewrites a locale-formatted numeric token into canonical
// decimal notation. Under the comma convention every dot is a thousands
// separator and the first comma becomes the decimal point; under the dot
// convention commas are thousands separators and dots pass through.
func NormalizeNumber(token string, format NumericFormat) string {
	switch format {
	case FormatCommaDecimal:
		s := strings.ReplaceAll(token, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case FormatDotDecimal:
		return strings.ReplaceAll(token, ",", "")
	default:
		return token
	}
}

// ParsePayload normalizes a raw numeric token and parses it to a float
func ParsePayload(token string, format NumericFormat) (float64, error) {
	normalized := NormalizeNumber(token, format)
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric token %q is not a valid %s-decimal number", token, format)
	}
	return v, nil
}
