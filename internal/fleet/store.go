package fleet

import (
	"fmt"
	"sync"
)

// Group is an excavator together with the dump trucks that haul for it.
// Dump trucks appearing in a report before any excavator are collected
// into a leading group with a nil excavator.
type Group struct {
	Excavator  *Record  `json:"excavator,omitempty"`
	DumpTrucks []Record `json:"dump_trucks"`
}

// Store is the in-memory fleet collection owned by a dashboard session.
// Records are kept in document order as a sequence of groups, which makes
// the excavator/dump-truck contiguity invariant structural instead of a
// convention on a flat slice. All mutations are serialized by a mutex so
// concurrent imports cannot violate the uniqueness invariant.
type Store struct {
	mu        sync.Mutex
	groups    []Group
	aggregate *float64
}

// NewStore creates an empty fleet store
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps the entire collection for the given records, grouping
// them in document order. The aggregate is the optional document-supplied
// average; pass nil when the report carried no Total line. Fails without
// modifying the store if an equipment number appears twice.
func (s *Store) ReplaceAll(records []Record, aggregate *float64) error {
	groups, err := buildGroups(records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	s.aggregate = copyFloat(aggregate)
	return nil
}

// Clear removes every record and the document aggregate
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = nil
	s.aggregate = nil
}

// Len returns the number of records in the collection
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.groups {
		if g.Excavator != nil {
			n++
		}
		n += len(g.DumpTrucks)
	}
	return n
}

// Records returns the collection flattened back to document order
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

func (s *Store) recordsLocked() []Record {
	var out []Record
	for _, g := range s.groups {
		if g.Excavator != nil {
			out = append(out, *g.Excavator)
		}
		out = append(out, g.DumpTrucks...)
	}
	return out
}

// Groups returns a deep copy of the grouped collection
func (s *Store) Groups() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		cp := Group{DumpTrucks: append([]Record(nil), g.DumpTrucks...)}
		if g.Excavator != nil {
			ex := *g.Excavator
			cp.Excavator = &ex
		}
		out[i] = cp
	}
	return out
}

// Find looks up a record by equipment number
func (s *Store) Find(equipmentNumber string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(equipmentNumber)
	if rec == nil {
		return Record{}, false
	}
	return *rec, true
}

// Aggregate returns the document-supplied average, if the last import had one
func (s *Store) Aggregate() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aggregate == nil {
		return 0, false
	}
	return *s.aggregate, true
}

// Summary computes the statistics for the current collection. When the
// last imported report carried a Total line, that document-supplied value
// replaces the computed mean.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Compute(s.recordsLocked())
	if s.aggregate != nil && summary.TotalRecords > 0 {
		summary.AveragePayload = roundOneDecimal(*s.aggregate)
	}
	return summary
}

// SetSupervisor assigns a supervisor to a record. Assigning to an
// excavator propagates the name to every dump truck in its group; dump
// trucks can still be reassigned individually afterwards.
func (s *Store) SetSupervisor(equipmentNumber, supervisor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		g := &s.groups[i]
		if g.Excavator != nil && g.Excavator.EquipmentNumber == equipmentNumber {
			g.Excavator.Supervisor = supervisor
			for j := range g.DumpTrucks {
				g.DumpTrucks[j].Supervisor = supervisor
			}
			return nil
		}
		for j := range g.DumpTrucks {
			if g.DumpTrucks[j].EquipmentNumber == equipmentNumber {
				g.DumpTrucks[j].Supervisor = supervisor
				return nil
			}
		}
	}
	return fmt.Errorf("no record with equipment number %q", equipmentNumber)
}

// SetPayload updates the payload value of a single record
func (s *Store) SetPayload(equipmentNumber string, payload float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(equipmentNumber)
	if rec == nil {
		return fmt.Errorf("no record with equipment number %q", equipmentNumber)
	}
	rec.Payload = payload
	return nil
}

// SetOverride pins a manual status on a record; pass nil to restore
// threshold-based classification.
func (s *Store) SetOverride(equipmentNumber string, status *Status) error {
	if status != nil && !status.IsValid() {
		return fmt.Errorf("invalid status %q", *status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(equipmentNumber)
	if rec == nil {
		return fmt.Errorf("no record with equipment number %q", equipmentNumber)
	}
	if status == nil {
		rec.StatusOverride = nil
		return nil
	}
	st := *status
	rec.StatusOverride = &st
	return nil
}

func (s *Store) findLocked(equipmentNumber string) *Record {
	for i := range s.groups {
		g := &s.groups[i]
		if g.Excavator != nil && g.Excavator.EquipmentNumber == equipmentNumber {
			return g.Excavator
		}
		for j := range g.DumpTrucks {
			if g.DumpTrucks[j].EquipmentNumber == equipmentNumber {
				return &g.DumpTrucks[j]
			}
		}
	}
	return nil
}

// buildGroups folds a document-ordered record slice into groups: each
// excavator opens a new group and collects the dump trucks that follow it.
func buildGroups(records []Record) ([]Group, error) {
	seen := make(map[string]struct{}, len(records))
	var groups []Group

	for _, rec := range records {
		if _, dup := seen[rec.EquipmentNumber]; dup {
			return nil, fmt.Errorf("duplicate equipment number %q", rec.EquipmentNumber)
		}
		seen[rec.EquipmentNumber] = struct{}{}

		if rec.Kind() == KindExcavator {
			ex := rec
			groups = append(groups, Group{Excavator: &ex})
			continue
		}
		if len(groups) == 0 {
			// Dump trucks ahead of any excavator open a leading group.
			groups = append(groups, Group{})
		}
		last := &groups[len(groups)-1]
		last.DumpTrucks = append(last.DumpTrucks, rec)
	}
	return groups, nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
