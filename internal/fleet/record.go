package fleet

import "strings"

// EquipmentKind represents the category of a fleet unit
type EquipmentKind string

const (
	KindExcavator EquipmentKind = "excavator"
	KindDumpTruck EquipmentKind = "dump_truck"
	KindUnknown   EquipmentKind = "unknown"
)

// Record is a single fleet telemetry entry extracted from a payload report
type Record struct {
	EquipmentNumber string  `json:"equipment_number"`
	Payload         float64 `json:"payload"`
	Supervisor      string  `json:"supervisor,omitempty"`
	StatusOverride  *Status `json:"status_override,omitempty"`
}

// Kind derives the equipment category from the identifier prefix
func (r Record) Kind() EquipmentKind {
	switch {
	case strings.HasPrefix(r.EquipmentNumber, "EX"):
		return KindExcavator
	case strings.HasPrefix(r.EquipmentNumber, "DT"):
		return KindDumpTruck
	default:
		return KindUnknown
	}
}

// Status classifies the record's payload against the supplied rules,
// honoring a manual override when one is set. The classification is
// recomputed on every call; it is never cached on the record.
func (r Record) Status(rules Rules) Status {
	return Classify(r.Payload, r.StatusOverride, rules)
}

// Status is the payload classification band for a fleet record
type Status string

const (
	StatusUnder    Status = "under"
	StatusOptimal  Status = "optimal"
	StatusOverload Status = "overload"
)

// StatusInfo carries the display metadata associated with a status band
type StatusInfo struct {
	Label       string
	Symbol      string
	Description string
}

// Info returns the metadata for a status band
func (s Status) Info() StatusInfo {
	switch s {
	case StatusUnder:
		return StatusInfo{
			Label:       "Under Load",
			Symbol:      "▽",
			Description: "Payload below the optimal band",
		}
	case StatusOptimal:
		return StatusInfo{
			Label:       "Optimal",
			Symbol:      "◎",
			Description: "Payload within the optimal band",
		}
	case StatusOverload:
		return StatusInfo{
			Label:       "Overload",
			Symbol:      "△",
			Description: "Payload above the optimal band",
		}
	default:
		return StatusInfo{Label: "Unknown", Symbol: "?", Description: "Unrecognized status"}
	}
}

// IsValid checks if the status is one of the three known bands
func (s Status) IsValid() bool {
	switch s {
	case StatusUnder, StatusOptimal, StatusOverload:
		return true
	default:
		return false
	}
}

// AllStatuses returns every valid status band
func AllStatuses() []Status {
	return []Status{StatusUnder, StatusOptimal, StatusOverload}
}

// ParseStatus converts a string to a Status, reporting whether it is valid
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

// Classify maps a payload value to a status band. An explicit override
// always wins. Both band boundaries belong to the optimal band.
func Classify(payload float64, override *Status, rules Rules) Status {
	if override != nil {
		return *override
	}
	switch {
	case payload < rules.UnderBelow:
		return StatusUnder
	case payload > rules.OverloadAbove:
		return StatusOverload
	default:
		return StatusOptimal
	}
}
