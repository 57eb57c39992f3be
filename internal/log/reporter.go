package log

import (
	"context"
	"log/slog"

	"github.com/mmcdole/roster/internal/domain"
)

// Source is attached to every reported failure
const Source = "roster"

// Reporter implements domain.Reporter on top of slog
type Reporter struct {
	logger *slog.Logger
	source string
}

// NewReporter creates a reporter writing to logger
func NewReporter(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger, source: Source}
}

// Report logs a failure caught at the service boundary. It never panics.
func (r *Reporter) Report(ctx context.Context, op string, err error, sev domain.Severity) {
	defer func() {
		// A broken sink must not take the caller down with it
		_ = recover()
	}()

	r.logger.LogAttrs(ctx, Level(sev), "operation failed",
		slog.String("source", r.source),
		slog.String("op", op),
		slog.Any("error", err),
	)
}

// Level maps a report severity to a slog level
func Level(sev domain.Severity) slog.Level {
	switch sev {
	case domain.SeverityVerbose:
		return slog.LevelDebug
	case domain.SeverityInfo:
		return slog.LevelInfo
	case domain.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
