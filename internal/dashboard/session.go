package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/haulstat/fleet-dashboard/internal/export"
	"github.com/haulstat/fleet-dashboard/internal/fleet"
	"github.com/haulstat/fleet-dashboard/internal/report"
)

// Session owns the in-memory dashboard state for one run: the fleet
// collection, the extraction pipeline and the rule set. All tool and CLI
// surfaces operate through a Session.
type Session struct {
	store       *fleet.Store
	extractor   *report.Extractor
	rules       fleet.Rules
	maxFileSize int64
	logger      *slog.Logger
}

// ImportSummary describes the outcome of importing one report. Invalid
// records are diagnostics only; they never block the valid subset.
type ImportSummary struct {
	ImportID  string                `json:"import_id"`
	Imported  int                   `json:"imported"`
	Invalid   []fleet.InvalidRecord `json:"invalid,omitempty"`
	Aggregate *float64              `json:"aggregate,omitempty"`
	Pages     int                   `json:"pages"`
}

// NewSession creates a dashboard session. A nil logger falls back to the
// default slog logger.
func NewSession(extractor *report.Extractor, rules fleet.Rules, maxFileSize int64, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:       fleet.NewStore(),
		extractor:   extractor,
		rules:       rules,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ImportReport extracts, validates and loads one report into the fleet
// collection, replacing its previous contents. The valid subset is always
// imported; invalid records come back with their issues.
func (s *Session) ImportReport(ctx context.Context, data []byte, format report.NumericFormat) (*ImportSummary, error) {
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: report is %d bytes (max %d)",
			report.ErrInvalidInput, len(data), s.maxFileSize)
	}

	result, err := s.extractor.Extract(ctx, data, format)
	if err != nil {
		return nil, err
	}

	outcome := fleet.Validate(result.Records, s.rules)
	if err := s.store.ReplaceAll(outcome.Valid, result.Aggregate); err != nil {
		return nil, fmt.Errorf("loading records into fleet collection: %w", err)
	}

	s.logger.Info("report imported",
		"import_id", result.ID,
		"pages", result.Pages,
		"imported", len(outcome.Valid),
		"invalid", len(outcome.Invalid),
	)

	return &ImportSummary{
		ImportID:  result.ID,
		Imported:  len(outcome.Valid),
		Invalid:   outcome.Invalid,
		Aggregate: result.Aggregate,
		Pages:     result.Pages,
	}, nil
}

// ImportFile reads a report from disk and imports it
func (s *Session) ImportFile(ctx context.Context, path string, format report.NumericFormat) (*ImportSummary, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("%w: %s is not a PDF file", report.ErrInvalidInput, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access report: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", report.ErrInvalidInput, path)
	}
	if info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("%w: report is %d bytes (max %d)",
			report.ErrInvalidInput, info.Size(), s.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report: %w", err)
	}
	return s.ImportReport(ctx, data, format)
}

// Validate re-checks a record set against the session rules
func (s *Session) Validate(records []fleet.Record) fleet.Outcome {
	return fleet.Validate(records, s.rules)
}

// Store returns the session's fleet collection
func (s *Session) Store() *fleet.Store {
	return s.store
}

// Rules returns the session's immutable rule set
func (s *Session) Rules() fleet.Rules {
	return s.rules
}

// Summary returns the current fleet statistics, honoring a
// document-supplied aggregate when the last import carried one.
func (s *Session) Summary() fleet.Summary {
	return s.store.Summary()
}

// FilteredGroups applies the dashboard filter controls to the collection
func (s *Session) FilteredGroups(f fleet.Filter) []fleet.Group {
	return fleet.Apply(s.store.Groups(), f, s.rules)
}

// ExportXLSX writes the current collection to an Excel workbook
func (s *Session) ExportXLSX(path string) error {
	data, err := export.WorkbookBytes(s.store.Groups(), s.store.Summary(), s.rules)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	s.logger.Info("excel export written", "path", path, "records", s.store.Len())
	return nil
}

// ExportXLSXBytes returns the current collection as an Excel workbook
func (s *Session) ExportXLSXBytes() ([]byte, error) {
	return export.WorkbookBytes(s.store.Groups(), s.store.Summary(), s.rules)
}
