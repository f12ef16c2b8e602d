package fleet

import "strings"

// Filter describes the dashboard's table filtering controls. Zero-value
// fields are inactive. Status filtering classifies with the supplied
// rules, so manual overrides are honored.
type Filter struct {
	// Query is a case-insensitive substring match on equipment number
	// or supervisor name.
	Query string

	// Status keeps only records classified into the given band.
	Status *Status

	// Equipment selects one unit by number. Selecting an excavator keeps
	// its whole group; selecting a dump truck keeps it and its parent
	// excavator.
	Equipment string

	// Supervisor keeps only records assigned to the given supervisor.
	Supervisor string
}

// IsZero reports whether no filtering control is active
func (f Filter) IsZero() bool {
	return f.Query == "" && f.Status == nil && f.Equipment == "" && f.Supervisor == ""
}

// Apply filters grouped records. The equipment selection first narrows
// each group to its closure (parent excavator plus selected dump trucks),
// then the remaining predicates run per record. Groups left with no
// matching member are dropped entirely.
func Apply(groups []Group, f Filter, rules Rules) []Group {
	if f.IsZero() {
		return groups
	}

	var out []Group
	for _, g := range groups {
		filtered, ok := f.applyGroup(g, rules)
		if ok {
			out = append(out, filtered)
		}
	}
	return out
}

func (f Filter) applyGroup(g Group, rules Rules) (Group, bool) {
	keepEx := g.Excavator != nil
	keepDT := make([]bool, len(g.DumpTrucks))
	for i := range keepDT {
		keepDT[i] = true
	}

	if f.Equipment != "" {
		switch {
		case g.Excavator != nil && g.Excavator.EquipmentNumber == f.Equipment:
			// Whole group stays in the candidate set.
		default:
			found := false
			for i, dt := range g.DumpTrucks {
				if dt.EquipmentNumber == f.Equipment {
					found = true
				} else {
					keepDT[i] = false
				}
			}
			if !found {
				return Group{}, false
			}
			// The parent excavator stays visible alongside its dump truck.
		}
	}

	if keepEx && !f.matches(*g.Excavator, rules) {
		keepEx = false
	}
	for i, dt := range g.DumpTrucks {
		if keepDT[i] && !f.matches(dt, rules) {
			keepDT[i] = false
		}
	}

	result := Group{}
	if keepEx {
		ex := *g.Excavator
		result.Excavator = &ex
	}
	for i, dt := range g.DumpTrucks {
		if keepDT[i] {
			result.DumpTrucks = append(result.DumpTrucks, dt)
		}
	}

	if result.Excavator == nil && len(result.DumpTrucks) == 0 {
		return Group{}, false
	}
	return result, true
}

func (f Filter) matches(rec Record, rules Rules) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(rec.EquipmentNumber), q) &&
			!strings.Contains(strings.ToLower(rec.Supervisor), q) {
			return false
		}
	}
	if f.Status != nil && rec.Status(rules) != *f.Status {
		return false
	}
	if f.Supervisor != "" && rec.Supervisor != f.Supervisor {
		return false
	}
	return true
}
