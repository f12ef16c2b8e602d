package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/haulstat/fleet-dashboard/internal/fleet"
)

const (
	recordsSheet = "Fleet Records"
	summarySheet = "Summary"
)

// WorkbookBytes renders the fleet collection and its summary statistics
// into an XLSX workbook. Records keep their document order; status cells
// reflect the current classification, overrides included.
func WorkbookBytes(groups []fleet.Group, summary fleet.Summary, rules fleet.Rules) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(recordsSheet)
	if err != nil {
		return nil, fmt.Errorf("creating records sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	if err := writeRecords(f, groups, rules); err != nil {
		return nil, err
	}
	if err := writeSummary(f, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRecords(f *excelize.File, groups []fleet.Group, rules fleet.Rules) error {
	headers := []string{"Equipment", "Type", "Payload (t)", "Status", "Supervisor"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(recordsSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	writeRecord := func(rec fleet.Record) error {
		status := rec.Status(rules)
		values := []any{
			rec.EquipmentNumber,
			kindLabel(rec.Kind()),
			rec.Payload,
			status.Info().Label,
			rec.Supervisor,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(recordsSheet, cell, v); err != nil {
				return fmt.Errorf("writing record row %d: %w", row, err)
			}
		}
		row++
		return nil
	}

	for _, g := range groups {
		if g.Excavator != nil {
			if err := writeRecord(*g.Excavator); err != nil {
				return err
			}
		}
		for _, dt := range g.DumpTrucks {
			if err := writeRecord(dt); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(recordsSheet, "A", "A", 12)
	_ = f.SetColWidth(recordsSheet, "B", "B", 14)
	_ = f.SetColWidth(recordsSheet, "C", "D", 12)
	_ = f.SetColWidth(recordsSheet, "E", "E", 24)
	return nil
}

func writeSummary(f *excelize.File, summary fleet.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	rows := []struct {
		label string
		value any
	}{
		{"Total Records", summary.TotalRecords},
		{"Average Payload (t)", summary.AveragePayload},
		{"Min Payload (t)", summary.MinPayload},
		{"Max Payload (t)", summary.MaxPayload},
		{"Excavators", summary.ExcavatorCount},
		{"Dump Trucks", summary.DumpTruckCount},
	}

	for i, r := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, labelCell, r.label); err != nil {
			return fmt.Errorf("writing summary label: %w", err)
		}
		if err := f.SetCellValue(summarySheet, valueCell, r.value); err != nil {
			return fmt.Errorf("writing summary value: %w", err)
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 14)
	return nil
}

func kindLabel(kind fleet.EquipmentKind) string {
	switch kind {
	case fleet.KindExcavator:
		return "Excavator"
	case fleet.KindDumpTruck:
		return "Dump Truck"
	default:
		return "Unknown"
	}
}
