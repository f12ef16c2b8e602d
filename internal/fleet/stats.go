package fleet

import "math"

// Summary holds the aggregate statistics for a set of fleet records
type Summary struct {
	TotalRecords   int     `json:"total_records"`
	AveragePayload float64 `json:"average_payload"`
	MinPayload     float64 `json:"min_payload"`
	MaxPayload     float64 `json:"max_payload"`
	ExcavatorCount int     `json:"excavator_count"`
	DumpTruckCount int     `json:"dump_truck_count"`
}

// Compute calculates summary statistics over a record set. It is a pure
// function: empty input yields an all-zero summary and the input slice is
// never modified. The average is rounded to one decimal place.
func Compute(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	sum := 0.0
	minP := records[0].Payload
	maxP := records[0].Payload
	excavators := 0
	dumpTrucks := 0

	for _, rec := range records {
		sum += rec.Payload
		if rec.Payload < minP {
			minP = rec.Payload
		}
		if rec.Payload > maxP {
			maxP = rec.Payload
		}
		switch rec.Kind() {
		case KindExcavator:
			excavators++
		case KindDumpTruck:
			dumpTrucks++
		}
	}

	return Summary{
		TotalRecords:   len(records),
		AveragePayload: roundOneDecimal(sum / float64(len(records))),
		MinPayload:     minP,
		MaxPayload:     maxP,
		ExcavatorCount: excavators,
		DumpTruckCount: dumpTrucks,
	}
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
