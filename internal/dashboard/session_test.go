package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulstat/fleet-dashboard/internal/fleet"
	"github.com/haulstat/fleet-dashboard/internal/report"
)

// stubEngine serves pre-baked page lines so session tests never touch a
// real PDF parser.
type stubEngine struct {
	pages [][]string
}

func (e *stubEngine) Ready() bool { return true }

func (e *stubEngine) Load(ctx context.Context, data []byte) (report.Document, error) {
	return &stubDocument{pages: e.pages}, nil
}

type stubDocument struct {
	pages [][]string
}

func (d *stubDocument) PageCount() int { return len(d.pages) }

func (d *stubDocument) PageFragments(pageNum int) ([]report.PositionedFragment, error) {
	var fragments []report.PositionedFragment
	for i, line := range d.pages[pageNum-1] {
		y := float64(800 - i*12)
		for j, word := range strings.Fields(line) {
			fragments = append(fragments, report.PositionedFragment{
				X:    float64(j * 60),
				Y:    y,
				Text: word,
			})
		}
	}
	return fragments, nil
}

func (d *stubDocument) Close() error { return nil }

func newTestSession(t *testing.T, pages [][]string, maxFileSize int64) *Session {
	t.Helper()
	extractor := report.NewExtractor(&stubEngine{pages: pages}, nil, report.Options{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(extractor, fleet.DefaultRules(), maxFileSize, logger)
}

func TestImportReport(t *testing.T) {
	s := newTestSession(t, [][]string{{
		"Shift Payload Report",
		"EX2046 38.9",
		"DT2080 37.4",
		"Total 38.2",
	}}, 1<<20)

	summary, err := s.ImportReport(context.Background(), []byte("%PDF"), report.FormatDotDecimal)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.ImportID)
	assert.Equal(t, 2, summary.Imported)
	assert.Empty(t, summary.Invalid)
	require.NotNil(t, summary.Aggregate)
	assert.Equal(t, 38.2, *summary.Aggregate)
	assert.Equal(t, 1, summary.Pages)

	// The document aggregate overrides the computed mean.
	assert.Equal(t, 2, s.Summary().TotalRecords)
	assert.Equal(t, 38.2, s.Summary().AveragePayload)
	assert.Equal(t, 2, s.Store().Len())
}

func TestImportReport_InvalidRecordsReported(t *testing.T) {
	s := newTestSession(t, [][]string{{
		"EX2046 38.9",
		"DT2080 2000.5",
	}}, 1<<20)

	summary, err := s.ImportReport(context.Background(), []byte("%PDF"), report.FormatDotDecimal)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Imported)
	require.Len(t, summary.Invalid, 1)
	assert.Equal(t, "DT2080", summary.Invalid[0].Record.EquipmentNumber)
	assert.NotEmpty(t, summary.Invalid[0].Issues)

	// Only the valid subset lands in the collection.
	assert.Equal(t, 1, s.Store().Len())
}

func TestImportReport_ReplacesPreviousCollection(t *testing.T) {
	s := newTestSession(t, [][]string{{"EX2046 38.9"}}, 1<<20)
	require.NoError(t, s.Store().ReplaceAll(fleet.SampleRecords(), nil))
	require.Equal(t, len(fleet.SampleRecords()), s.Store().Len())

	_, err := s.ImportReport(context.Background(), []byte("%PDF"), report.FormatDotDecimal)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Store().Len())
}

func TestImportReport_SizeLimit(t *testing.T) {
	s := newTestSession(t, [][]string{{"EX2046 38.9"}}, 4)

	_, err := s.ImportReport(context.Background(), []byte("too large"), report.FormatDotDecimal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrInvalidInput))
}

func TestImportFile_RejectsNonPDF(t *testing.T) {
	s := newTestSession(t, nil, 1<<20)

	_, err := s.ImportFile(context.Background(), "/tmp/report.txt", report.FormatDotDecimal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrInvalidInput))
}

func TestImportFile_RejectsMissingFile(t *testing.T) {
	s := newTestSession(t, nil, 1<<20)

	_, err := s.ImportFile(context.Background(), "/tmp/does-not-exist.pdf", report.FormatDotDecimal)
	require.Error(t, err)
}

func TestFilteredGroups(t *testing.T) {
	s := newTestSession(t, [][]string{{
		"EX2046 101.3",
		"DT2080 108.9",
		"DT2081 99.5",
	}}, 1<<20)

	_, err := s.ImportReport(context.Background(), []byte("%PDF"), report.FormatDotDecimal)
	require.NoError(t, err)

	overload := fleet.StatusOverload
	groups := s.FilteredGroups(fleet.Filter{Status: &overload})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].DumpTrucks, 1)
	assert.Equal(t, "DT2080", groups[0].DumpTrucks[0].EquipmentNumber)
}

func TestExportXLSXBytes(t *testing.T) {
	s := newTestSession(t, [][]string{{"EX2046 38.9", "DT2080 37.4"}}, 1<<20)

	_, err := s.ImportReport(context.Background(), []byte("%PDF"), report.FormatDotDecimal)
	require.NoError(t, err)

	data, err := s.ExportXLSXBytes()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
