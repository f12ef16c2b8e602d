package report

import "regexp"

// AggregateMarker is the identifier of the document-supplied average row
const AggregateMarker = "Total"

// recordLinePattern is the tolerant line grammar for payload rows: after
// optional leading whitespace, an equipment identifier (EX or DT plus four
// digits) or the literal Total marker, then at least one whitespace
// character, then the first run of numeric characters. Anything trailing
// the numeric token is ignored.
var recordLinePattern = regexp.MustCompile(`^\s*(EX\d{4}|DT\d{4}|Total)\s+([0-9.,-]+)`)

// RawMatch is the untyped result of matching a logical line against the
// record grammar. Numeric still carries its source locale formatting.
type RawMatch struct {
	Identifier string
	Numeric    string
}

// ParseLine matches one logical line against the record grammar. The
// second return value is false for lines that are not payload rows:
// headers, footers and free text are expected in reports and are simply
// skipped.
func ParseLine(line string) (RawMatch, bool) {
	m := recordLinePattern.FindStringSubmatch(line)
	if m == nil {
		return RawMatch{}, false
	}
	return RawMatch{Identifier: m[1], Numeric: m[2]}, true
}
