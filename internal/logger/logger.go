// Package logger provides structured logging for the transform runtime.
// It wraps log/slog so every component logs with consistent field names
// (snake_case) and supports two output formats:
//   - JSON (default): machine-readable structured logging
//   - Human: console output with level prefixes and optional colors
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// OutputFormat selects the log output format.
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format.
	FormatJSON OutputFormat = iota
	// FormatHuman is a console format with level prefixes and colors.
	FormatHuman
)

// SetLevel configures the logging level, keeping the JSON format.
func SetLevel(level slog.Level) {
	SetLevelAndFormat(level, FormatJSON)
}

// SetLevelAndFormat sets both the log level and the output format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	switch format {
	case FormatHuman:
		Logger = slog.New(NewHumanHandler(os.Stderr, &HumanHandlerOptions{
			Level:     level,
			UseColors: isTerminal(os.Stderr),
		}))
	default:
		Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRun returns a logger carrying the execution run context.
func WithRun(runID, workflow string) *slog.Logger {
	return Logger.With("run_id", runID, "workflow", workflow)
}

// ExecutionContext carries the fields every execution log line shares.
type ExecutionContext struct {
	// RunID uniquely identifies one execution.
	RunID string
	// Workflow is the workflow name.
	Workflow string
	// Stage is the current stage name (a source or filter name).
	Stage string
	// StageKind distinguishes source and filter stages.
	StageKind string
	// StageIndex is the position of the stage in the chain; negative when
	// not applicable.
	StageIndex int
	// DryRun marks executions that only preview the upstream request.
	DryRun bool
}

// LogExecutionStart logs the start of a workflow execution.
func LogExecutionStart(ctx ExecutionContext) {
	Logger.Info("execution started", contextAttrs(ctx)...)
}

// LogExecutionEnd logs the completion of a workflow execution with its final
// status and field count.
func LogExecutionEnd(ctx ExecutionContext, status string, fieldsOut int, duration time.Duration) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("fields_out", fieldsOut),
		slog.Duration("duration", duration),
	)
	Logger.Info("execution completed", attrs...)
}

// LogStageStart logs the start of one stage.
func LogStageStart(ctx ExecutionContext, fieldsIn int) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs, slog.Int("fields_in", fieldsIn))
	Logger.Debug("stage started", attrs...)
}

// LogStageEnd logs the completion of one stage, as an error when err is
// non-nil.
func LogStageEnd(ctx ExecutionContext, fieldsOut int, duration time.Duration, err error) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("fields_out", fieldsOut),
		slog.Duration("duration", duration),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Debug("stage completed", attrs...)
}

// contextAttrs builds the shared attribute list; optional fields are
// included only when set.
func contextAttrs(ctx ExecutionContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))
	if ctx.Workflow != "" {
		attrs = append(attrs, slog.String("workflow", ctx.Workflow))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.StageKind != "" {
		attrs = append(attrs, slog.String("stage_kind", ctx.StageKind))
	}
	if ctx.StageIndex >= 0 {
		attrs = append(attrs, slog.Int("stage_index", ctx.StageIndex))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	return attrs
}

// isTerminal reports whether the writer is a terminal (supports colors).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output.
	Level slog.Level
	// UseColors enables ANSI color codes.
	UseColors bool
}

// HumanHandler is a slog handler that writes one readable line per record:
// time, level prefix, message, then key=value attributes.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{opts: *opts, writer: w}
}

// Enabled implements slog.Handler.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle implements slog.Handler.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.levelPrefix(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		writeAttr(&b, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, attr)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.writer, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &HumanHandler{opts: h.opts, writer: h.writer, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened; the human format
// has no nesting.
func (h *HumanHandler) WithGroup(string) slog.Handler {
	return h
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func (h *HumanHandler) levelPrefix(level slog.Level) string {
	var label, color string
	switch {
	case level >= slog.LevelError:
		label, color = "ERROR", colorRed
	case level >= slog.LevelWarn:
		label, color = "WARN ", colorYellow
	case level >= slog.LevelInfo:
		label, color = "INFO ", colorCyan
	default:
		label, color = "DEBUG", colorGray
	}
	if !h.opts.UseColors {
		return label
	}
	return color + label + colorReset
}

func writeAttr(b *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(fmt.Sprintf("%v", attr.Value.Any()))
}
