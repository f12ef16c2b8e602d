package report

import "log/slog"

// Severity grades a status message emitted during extraction
type Severity string

const (
	SeverityInfo       Severity = "info"
	SeverityProcessing Severity = "processing"
	SeverityWarning    Severity = "warning"
	SeverityError      Severity = "error"
	SeveritySuccess    Severity = "success"
)

// StatusReporter receives progress notifications from the extraction
// pipeline. The persistent flag asks the receiver not to auto-dismiss
// the message. The core never assumes a UI exists; callers that do not
// care pass NopReporter.
type StatusReporter interface {
	Report(message string, severity Severity, persistent bool)
}

// NopReporter discards all status messages
type NopReporter struct{}

// Report implements StatusReporter
func (NopReporter) Report(string, Severity, bool) {}

// LogReporter forwards status messages to a structured logger
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter backed by the given logger, falling
// back to the default logger when nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Report implements StatusReporter
func (r *LogReporter) Report(message string, severity Severity, persistent bool) {
	attrs := []any{"severity", string(severity), "persistent", persistent}
	switch severity {
	case SeverityWarning:
		r.logger.Warn(message, attrs...)
	case SeverityError:
		r.logger.Error(message, attrs...)
	default:
		r.logger.Info(message, attrs...)
	}
}
