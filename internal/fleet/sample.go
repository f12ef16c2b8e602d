package fleet

// SampleRecords returns the demo data set used when no report has been
// imported yet: two excavator groups with their dump trucks, covering all
// three status bands.
func SampleRecords() []Record {
	return []Record{
		{EquipmentNumber: "EX2046", Payload: 101.3},
		{EquipmentNumber: "DT2080", Payload: 96.2},
		{EquipmentNumber: "DT2081", Payload: 104.7},
		{EquipmentNumber: "DT2082", Payload: 108.9},
		{EquipmentNumber: "EX2047", Payload: 99.5},
		{EquipmentNumber: "DT2090", Payload: 92.4},
		{EquipmentNumber: "DT2091", Payload: 100.1},
	}
}

// LoadSample replaces the collection with the demo data set. The document
// aggregate is cleared, matching a fresh session with no imported report.
func (s *Store) LoadSample() {
	// SampleRecords contains no duplicates, so ReplaceAll cannot fail.
	_ = s.ReplaceAll(SampleRecords(), nil)
}
