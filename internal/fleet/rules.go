package fleet

import (
	"math"
	"regexp"
)

const (
	// Default status band boundaries in tonnes
	DefaultUnderBelow    = 98.0
	DefaultOverloadAbove = 105.0

	// Default payload sanity range in tonnes
	DefaultPayloadMin = 0.0
	DefaultPayloadMax = 1000.0
)

// equipmentNumberPattern matches valid fleet identifiers: an EX or DT
// prefix followed by exactly four digits.
var equipmentNumberPattern = regexp.MustCompile(`^(EX|DT)\d{4}$`)

// Rules holds the threshold and validation parameters for a dashboard
// session. A Rules value is constructed once at startup and passed by
// value into every component that needs it; it is never mutated.
type Rules struct {
	// Status band boundaries: payload < UnderBelow classifies as under,
	// payload > OverloadAbove classifies as overload.
	UnderBelow    float64
	OverloadAbove float64

	// Accepted payload range, inclusive on both ends.
	PayloadMin float64
	PayloadMax float64

	// Identifier format for fleet equipment.
	EquipmentPattern *regexp.Regexp
}

// DefaultRules returns the standard rule set for payload reports
func DefaultRules() Rules {
	return Rules{
		UnderBelow:       DefaultUnderBelow,
		OverloadAbove:    DefaultOverloadAbove,
		PayloadMin:       DefaultPayloadMin,
		PayloadMax:       DefaultPayloadMax,
		EquipmentPattern: equipmentNumberPattern,
	}
}

// ValidEquipmentNumber reports whether id matches the fleet identifier format
func (r Rules) ValidEquipmentNumber(id string) bool {
	return r.EquipmentPattern.MatchString(id)
}

// ValidPayload reports whether p is a finite value within the accepted range
func (r Rules) ValidPayload(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p >= r.PayloadMin && p <= r.PayloadMax
}
