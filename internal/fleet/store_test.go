package fleet

import (
	"sync"
	"testing"
)

func importRecords(t *testing.T, s *Store, records []Record, aggregate *float64) {
	t.Helper()
	if err := s.ReplaceAll(records, aggregate); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
}

func TestStore_GroupingPreservesDocumentOrder(t *testing.T) {
	s := NewStore()
	records := []Record{
		{EquipmentNumber: "EX2046", Payload: 101.3},
		{EquipmentNumber: "DT2080", Payload: 96.2},
		{EquipmentNumber: "DT2081", Payload: 104.7},
		{EquipmentNumber: "EX2047", Payload: 99.5},
		{EquipmentNumber: "DT2090", Payload: 92.4},
	}
	importRecords(t, s, records, nil)

	groups := s.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Excavator.EquipmentNumber != "EX2046" || len(groups[0].DumpTrucks) != 2 {
		t.Errorf("first group wrong: %+v", groups[0])
	}
	if groups[1].Excavator.EquipmentNumber != "EX2047" || len(groups[1].DumpTrucks) != 1 {
		t.Errorf("second group wrong: %+v", groups[1])
	}

	flat := s.Records()
	if len(flat) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(flat))
	}
	for i := range records {
		if flat[i].EquipmentNumber != records[i].EquipmentNumber {
			t.Errorf("record %d out of order: got %s, want %s",
				i, flat[i].EquipmentNumber, records[i].EquipmentNumber)
		}
	}
}

func TestStore_LeadingDumpTrucks(t *testing.T) {
	s := NewStore()
	importRecords(t, s, []Record{
		{EquipmentNumber: "DT2080", Payload: 96.2},
		{EquipmentNumber: "EX2046", Payload: 101.3},
	}, nil)

	groups := s.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected leading group plus excavator group, got %d groups", len(groups))
	}
	if groups[0].Excavator != nil || len(groups[0].DumpTrucks) != 1 {
		t.Errorf("leading group should hold the orphan dump truck: %+v", groups[0])
	}
}

func TestStore_RejectsDuplicates(t *testing.T) {
	s := NewStore()
	importRecords(t, s, []Record{{EquipmentNumber: "EX2046", Payload: 100}}, nil)

	err := s.ReplaceAll([]Record{
		{EquipmentNumber: "DT2080", Payload: 90},
		{EquipmentNumber: "DT2080", Payload: 91},
	}, nil)
	if err == nil {
		t.Fatal("expected duplicate equipment number to be rejected")
	}

	// Failed replace must leave the previous collection untouched.
	if s.Len() != 1 {
		t.Errorf("store modified by failed replace: %d records", s.Len())
	}
}

func TestStore_SupervisorPropagation(t *testing.T) {
	s := NewStore()
	importRecords(t, s, []Record{
		{EquipmentNumber: "EX2046", Payload: 101.3},
		{EquipmentNumber: "DT2080", Payload: 96.2},
		{EquipmentNumber: "DT2081", Payload: 104.7},
		{EquipmentNumber: "EX2047", Payload: 99.5},
		{EquipmentNumber: "DT2090", Payload: 92.4},
	}, nil)

	if err := s.SetSupervisor("EX2046", "Dana"); err != nil {
		t.Fatalf("SetSupervisor failed: %v", err)
	}

	// Every dump truck in the first group inherits the supervisor.
	for _, id := range []string{"EX2046", "DT2080", "DT2081"} {
		rec, ok := s.Find(id)
		if !ok || rec.Supervisor != "Dana" {
			t.Errorf("%s supervisor = %q, want Dana", id, rec.Supervisor)
		}
	}

	// The second group is untouched.
	rec, _ := s.Find("DT2090")
	if rec.Supervisor != "" {
		t.Errorf("DT2090 should not inherit from another group, got %q", rec.Supervisor)
	}

	// A dump truck can be reassigned individually afterwards.
	if err := s.SetSupervisor("DT2081", "Morgan"); err != nil {
		t.Fatalf("SetSupervisor on dump truck failed: %v", err)
	}
	rec, _ = s.Find("DT2081")
	if rec.Supervisor != "Morgan" {
		t.Errorf("DT2081 supervisor = %q, want Morgan", rec.Supervisor)
	}
	rec, _ = s.Find("EX2046")
	if rec.Supervisor != "Dana" {
		t.Errorf("excavator supervisor should be unchanged, got %q", rec.Supervisor)
	}
}

func TestStore_SetSupervisorUnknownRecord(t *testing.T) {
	s := NewStore()
	if err := s.SetSupervisor("EX9999", "Dana"); err == nil {
		t.Error("expected error for unknown equipment number")
	}
}

func TestStore_PayloadEditAndOverride(t *testing.T) {
	s := NewStore()
	rules := DefaultRules()
	importRecords(t, s, []Record{{EquipmentNumber: "EX2046", Payload: 101.3}}, nil)

	if err := s.SetPayload("EX2046", 110.5); err != nil {
		t.Fatalf("SetPayload failed: %v", err)
	}
	rec, _ := s.Find("EX2046")
	if rec.Payload != 110.5 {
		t.Errorf("payload = %v, want 110.5", rec.Payload)
	}
	if rec.Status(rules) != StatusOverload {
		t.Errorf("status after edit = %s, want %s", rec.Status(rules), StatusOverload)
	}

	under := StatusUnder
	if err := s.SetOverride("EX2046", &under); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}
	rec, _ = s.Find("EX2046")
	if rec.Status(rules) != StatusUnder {
		t.Errorf("override not honored: %s", rec.Status(rules))
	}

	if err := s.SetOverride("EX2046", nil); err != nil {
		t.Fatalf("clearing override failed: %v", err)
	}
	rec, _ = s.Find("EX2046")
	if rec.Status(rules) != StatusOverload {
		t.Errorf("status after clearing override = %s, want %s", rec.Status(rules), StatusOverload)
	}

	bad := Status("extreme")
	if err := s.SetOverride("EX2046", &bad); err == nil {
		t.Error("expected invalid status to be rejected")
	}
}

func TestStore_AggregateOverridesComputedMean(t *testing.T) {
	s := NewStore()
	agg := 38.2
	importRecords(t, s, []Record{
		{EquipmentNumber: "EX2046", Payload: 38.9},
		{EquipmentNumber: "DT2080", Payload: 37.4},
	}, &agg)

	summary := s.Summary()
	if summary.AveragePayload != 38.2 {
		t.Errorf("document aggregate should override computed mean: got %v", summary.AveragePayload)
	}

	got, ok := s.Aggregate()
	if !ok || got != 38.2 {
		t.Errorf("Aggregate() = %v, %v; want 38.2, true", got, ok)
	}

	// Clear removes both records and aggregate.
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty store after Clear, got %d records", s.Len())
	}
	if _, ok := s.Aggregate(); ok {
		t.Error("aggregate should be cleared")
	}
}

func TestStore_LoadSampleClearsAggregate(t *testing.T) {
	s := NewStore()
	agg := 38.2
	importRecords(t, s, []Record{{EquipmentNumber: "EX2046", Payload: 38.9}}, &agg)

	s.LoadSample()

	if _, ok := s.Aggregate(); ok {
		t.Error("sample load should clear the document aggregate")
	}
	if s.Len() != len(SampleRecords()) {
		t.Errorf("expected %d sample records, got %d", len(SampleRecords()), s.Len())
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := NewStore()
	importRecords(t, s, SampleRecords(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.SetSupervisor("EX2046", "Dana")
			_ = s.SetPayload("DT2080", float64(90+n))
			_ = s.Records()
			_ = s.Summary()
		}(i)
	}
	wg.Wait()

	if s.Len() != len(SampleRecords()) {
		t.Errorf("record count changed under concurrent edits: %d", s.Len())
	}
}
