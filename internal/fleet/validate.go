package fleet

import "fmt"

// InvalidRecord is a record that failed validation, together with the
// reasons it was rejected. A record can carry more than one issue.
type InvalidRecord struct {
	Record
	Issues []string `json:"issues"`
}

// Outcome is the order-preserving partition of a record set into valid
// and invalid subsets. No record is dropped silently.
type Outcome struct {
	Valid   []Record        `json:"valid"`
	Invalid []InvalidRecord `json:"invalid"`
}

// Validate checks every record against the identifier format and payload
// range rules. Both checks run independently, so a record can accumulate
// two issues. Input order is preserved within each partition.
func Validate(records []Record, rules Rules) Outcome {
	outcome := Outcome{
		Valid:   []Record{},
		Invalid: []InvalidRecord{},
	}

	for _, rec := range records {
		var issues []string

		if !rules.ValidEquipmentNumber(rec.EquipmentNumber) {
			issues = append(issues,
				fmt.Sprintf("equipment number %q does not match the required format (EX or DT followed by 4 digits)",
					rec.EquipmentNumber))
		}
		if !rules.ValidPayload(rec.Payload) {
			issues = append(issues,
				fmt.Sprintf("payload %v is outside the accepted range [%g, %g]",
					rec.Payload, rules.PayloadMin, rules.PayloadMax))
		}

		if len(issues) > 0 {
			outcome.Invalid = append(outcome.Invalid, InvalidRecord{Record: rec, Issues: issues})
			continue
		}
		outcome.Valid = append(outcome.Valid, rec)
	}

	return outcome
}
