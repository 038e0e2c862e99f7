package extensions

import (
	"context"
	"log/slog"
	"time"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// LoggingExtension logs every acquire and release with its duration
type LoggingExtension struct {
	fixtures.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: fixtures.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *fixtures.Operation) (any, error) {
	start := time.Now()
	attrs := []any{
		"extension", e.Name(),
		"scope", op.Scope.ID(),
		"fixture", op.Fixture,
		"operation", string(op.Kind),
	}

	e.logger.DebugContext(ctx, "fixture operation starting", attrs...)
	result, err := next()

	attrs = append(attrs, "duration", time.Since(start))
	if err != nil {
		e.logger.ErrorContext(ctx, "fixture operation failed", append(attrs, "error", err)...)
	} else {
		e.logger.InfoContext(ctx, "fixture operation completed", attrs...)
	}

	return result, err
}
