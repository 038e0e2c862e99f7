package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// GraphDebugExtension logs the dependency tree of a fixture when its setup
// fails, and every failed teardown.
//
// Usage:
//
//	// Human-readable formatted output (with line breaks)
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	// Structured JSON logging (compact, machine-readable)
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	// Silent (for testing)
//	ext := extensions.NewGraphDebugExtension(extensions.NewSilentHandler())
//
// The extension logs at ERROR level.
type GraphDebugExtension struct {
	fixtures.BaseExtension

	mu     sync.Mutex
	failed map[string]error
	logger *slog.Logger
}

// NewGraphDebugExtension creates a new graph debug extension.
// logHandler: slog.Handler for logging (use HumanHandler for formatted output, or any other slog.Handler)
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: fixtures.NewBaseExtension("graph-debug"),
		failed:        make(map[string]error),
		logger:        slog.New(logHandler),
	}
}

// Order runs the extension outermost so it sees the final error.
func (e *GraphDebugExtension) Order() int {
	return 10
}

// Wrap tracks failed acquisitions
func (e *GraphDebugExtension) Wrap(ctx context.Context, next func() (any, error), op *fixtures.Operation) (any, error) {
	result, err := next()

	if err != nil && op.Kind == fixtures.OpAcquire {
		e.mu.Lock()
		if _, seen := e.failed[op.Fixture]; !seen {
			e.failed[op.Fixture] = err
		}
		e.mu.Unlock()
	}

	return result, err
}

// OnError logs the dependency tree when setup fails
func (e *GraphDebugExtension) OnError(err error, op *fixtures.Operation) {
	e.logger.Error("Fixture Setup Error",
		"fixture", op.Fixture,
		"scope", op.Scope.ID(),
		"error", err.Error(),
		"operation", string(op.Kind),
		"dependency_graph", e.formatDependencyGraph(op.Scope, op.Fixture),
	)
}

// OnReleaseError logs each failed teardown
func (e *GraphDebugExtension) OnReleaseError(err *fixtures.ReleaseError, scope *fixtures.Scope) {
	attrs := []any{
		"fixture", err.Fixture,
		"scope", scope.ID(),
		"error", err.Error(),
		"pending", strings.Join(scope.Acquired(), ", "),
	}
	if len(err.StackTrace) > 0 {
		attrs = append(attrs, "stack_trace", string(err.StackTrace))
	}
	e.logger.Error("Fixture Teardown Error", attrs...)
}

// Failed returns the fixtures whose setup failed, with their first error.
func (e *GraphDebugExtension) Failed() map[string]error {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]error, len(e.failed))
	for name, err := range e.failed {
		out[name] = err
	}
	return out
}

func (e *GraphDebugExtension) formatDependencyGraph(scope *fixtures.Scope, fixture string) string {
	var sb strings.Builder
	registry := scope.Registry()

	drawing, err := registry.DependencyTree(fixture)
	if err != nil {
		sb.WriteString(fmt.Sprintf("\n(unavailable: %v)\n", err))
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(drawing)
	sb.WriteString("\n")

	order, err := registry.ResolveOrder(fixture)
	if err != nil {
		return sb.String()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sb.WriteString("\nStatus:\n")
	ns := scope.Fixtures()
	for _, name := range order {
		switch {
		case name == fixture:
			sb.WriteString(fmt.Sprintf("  %s ❌ FAILED\n", name))
		case ns.Has(name):
			sb.WriteString(fmt.Sprintf("  %s ✓\n", name))
		case e.failed[name] != nil:
			sb.WriteString(fmt.Sprintf("  %s ❌ (error: %v)\n", name, e.failed[name]))
		default:
			sb.WriteString(fmt.Sprintf("  %s (pending)\n", name))
		}
	}

	return sb.String()
}

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}

// HumanHandler is a slog.Handler that formats logs for human readability
// with proper line breaks and visual formatting (especially for dependency graphs)
type HumanHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch record.Message {
	case "Fixture Setup Error":
		return h.handleSetupError(record)
	case "Fixture Teardown Error":
		return h.handleTeardownError(record)
	}

	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleSetupError(record slog.Record) error {
	attrs := recordAttrs(record)

	return h.writeAll(
		"",
		strings.Repeat("=", 70),
		"[GraphDebug] Fixture Setup Error",
		strings.Repeat("=", 70),
		"",
		"Failed Fixture: "+attrs["fixture"],
		"Scope: "+attrs["scope"],
		"Error: "+attrs["error"],
		"Operation: "+attrs["operation"],
		"",
		"Dependency Graph:"+attrs["dependency_graph"],
		strings.Repeat("=", 70),
		"",
	)
}

func (h *HumanHandler) handleTeardownError(record slog.Record) error {
	attrs := recordAttrs(record)

	lines := []string{
		"",
		strings.Repeat("=", 70),
		"[GraphDebug] Fixture Teardown Error",
		strings.Repeat("=", 70),
		"",
		"Fixture: " + attrs["fixture"],
		"Scope: " + attrs["scope"],
		"Error: " + attrs["error"],
		"Still pending: " + attrs["pending"],
	}
	if stack, ok := attrs["stack_trace"]; ok {
		lines = append(lines, "", "Stack Trace:", stack)
	}
	lines = append(lines, strings.Repeat("=", 70), "")

	return h.writeAll(lines...)
}

func (h *HumanHandler) writeAll(lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(h.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func recordAttrs(record slog.Record) map[string]string {
	attrs := make(map[string]string, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	return attrs
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}
