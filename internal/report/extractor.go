package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/haulstat/fleet-dashboard/internal/fleet"
)

const (
	// DefaultPageWarnThreshold is the page count above which the
	// extractor warns that processing may take a while.
	DefaultPageWarnThreshold = 10

	// DefaultReadyPollInterval is how often engine readiness is re-checked.
	DefaultReadyPollInterval = 200 * time.Millisecond

	// DefaultReadyTimeout bounds the readiness wait before giving up
	// with ErrNotReady.
	DefaultReadyTimeout = 5 * time.Second
)

// Options tunes the extraction orchestrator
type Options struct {
	PageWarnThreshold int
	ReadyPollInterval time.Duration
	ReadyTimeout      time.Duration
}

// DefaultOptions returns the standard extraction options
func DefaultOptions() Options {
	return Options{
		PageWarnThreshold: DefaultPageWarnThreshold,
		ReadyPollInterval: DefaultReadyPollInterval,
		ReadyTimeout:      DefaultReadyTimeout,
	}
}

// Result is the outcome of a successful extraction. Supervisors are
// always empty at this stage; assignment happens later in the store.
type Result struct {
	ID          string         `json:"id"`
	Records     []fleet.Record `json:"records"`
	Aggregate   *float64       `json:"aggregate,omitempty"`
	RecordCount int            `json:"record_count"`
	Pages       int            `json:"pages"`
}

// Extractor drives the end-to-end pipeline from a document buffer to a
// typed record set: per-page layout reconstruction, line parsing, numeric
// normalization and aggregate separation.
type Extractor struct {
	engine   DocumentEngine
	reporter StatusReporter
	opts     Options
}

// NewExtractor creates an extractor. A nil reporter is replaced with
// NopReporter so the pipeline has no knowledge of whether a UI exists.
func NewExtractor(engine DocumentEngine, reporter StatusReporter, opts Options) *Extractor {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if opts.PageWarnThreshold <= 0 {
		opts.PageWarnThreshold = DefaultPageWarnThreshold
	}
	if opts.ReadyPollInterval <= 0 {
		opts.ReadyPollInterval = DefaultReadyPollInterval
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	return &Extractor{engine: engine, reporter: reporter, opts: opts}
}

// Extract processes one report under the given numeric format. Failure
// modes: ErrInvalidInput for non-PDF buffers, ErrNotReady when the engine
// is still initializing, ErrEmptyResult when no record line matched, and
// ProcessingError for unexpected engine failures.
func (e *Extractor) Extract(ctx context.Context, data []byte, format NumericFormat) (*Result, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("unknown numeric format %q", format)
	}

	e.reporter.Report("Reading payload report...", SeverityProcessing, true)

	if err := e.waitReady(ctx); err != nil {
		return nil, err
	}

	doc, err := e.engine.Load(ctx, data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	if pageCount > e.opts.PageWarnThreshold {
		e.reporter.Report(
			fmt.Sprintf("Large report: %d pages, this may take a moment", pageCount),
			SeverityWarning, false)
	}

	lines, err := e.collectLines(ctx, doc, pageCount)
	if err != nil {
		return nil, err
	}

	records, aggregate := e.parseLines(lines, format)
	e.reporter.Report(
		fmt.Sprintf("Parsed %d payload records", len(records)),
		SeverityInfo, false)

	if len(records) == 0 {
		e.reporter.Report("No payload records found in report", SeverityWarning, true)
		return nil, ErrEmptyResult
	}

	e.reporter.Report("Validating extracted records...", SeverityProcessing, false)
	e.reporter.Report(
		fmt.Sprintf("Extraction complete: %d records from %d pages", len(records), pageCount),
		SeveritySuccess, false)

	return &Result{
		ID:          uuid.NewString(),
		Records:     records,
		Aggregate:   aggregate,
		RecordCount: len(records),
		Pages:       pageCount,
	}, nil
}

// collectLines reconstructs logical lines page by page, in ascending page
// order, appending each page's rows to one running sequence.
func (e *Extractor) collectLines(ctx context.Context, doc Document, pageCount int) ([]string, error) {
	var lines []string
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, &ProcessingError{Op: "collect_lines", Page: pageNum, Err: err}
		}

		if pageCount > 1 {
			e.reporter.Report(
				fmt.Sprintf("Processing page %d of %d", pageNum, pageCount),
				SeverityProcessing, false)
		}

		fragments, err := doc.PageFragments(pageNum)
		if err != nil {
			return nil, err
		}
		lines = append(lines, AssembleLines(fragments)...)
	}
	return lines, nil
}

// parseLines runs the record grammar over every accumulated line exactly
// once, in original order. A Total line sets the document aggregate (last
// one wins) and never becomes a record. Numeric tokens that survive the
// grammar but fail normalized parsing yield NaN payloads, so the
// validator reports them instead of the pipeline dropping them silently.
func (e *Extractor) parseLines(lines []string, format NumericFormat) ([]fleet.Record, *float64) {
	var records []fleet.Record
	var aggregate *float64

	for _, line := range lines {
		match, ok := ParseLine(line)
		if !ok {
			continue
		}

		value, err := ParsePayload(match.Numeric, format)
		if match.Identifier == AggregateMarker {
			if err == nil {
				v := value
				aggregate = &v
			}
			continue
		}
		if err != nil {
			value = math.NaN()
		}
		records = append(records, fleet.Record{
			EquipmentNumber: match.Identifier,
			Payload:         value,
		})
	}
	return records, aggregate
}

// waitReady polls the engine at a fixed interval until it reports ready,
// the context is canceled, or the timeout elapses.
func (e *Extractor) waitReady(ctx context.Context) error {
	if e.engine.Ready() {
		return nil
	}

	deadline := time.NewTimer(e.opts.ReadyTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.opts.ReadyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
		case <-deadline.C:
			return ErrNotReady
		case <-ticker.C:
			if e.engine.Ready() {
				return nil
			}
		}
	}
}
