// Package cli implements the dotring command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Every
// command loads the optional TOML configuration file first; flags override
// what the file sets.
//
// # Commands
//
// The main commands are:
//   - layout: Print the even layout of N dots
//   - snap: Snap an angle to the slot a new dot would take
//   - render: Build a widget from dots or a scenario script and write SVG, PNG, JSON or HTML
//   - play: Drive a widget with the mouse in the terminal
//   - serve: Host widgets over HTTP
//   - config: Show the configuration file path and effective settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes widget, render and HTTP hook events to the logger. Loggers are
// passed through context.Context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 files (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks reports widget, render and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnDotAdded(_ context.Context, angle float64, count int) {
	h.logger.Debug("Dot added", "angle", angle, "count", count)
}

func (h logHooks) OnDotRemoved(_ context.Context, index, count int) {
	h.logger.Debug("Dot removed", "index", index, "count", count)
}

func (h logHooks) OnCleared(_ context.Context, removed int) {
	h.logger.Debug("Ring cleared", "removed", removed)
}

func (h logHooks) OnSelectionChanged(_ context.Context, index int) {
	h.logger.Debug("Selection changed", "index", index)
}

func (h logHooks) OnRenderStart(_ context.Context, format string, dots int) {
	h.logger.Debug("Render started", "format", format, "dots", dots)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("Render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("Render complete", "format", format, "bytes", size, "duration", d.Round(time.Microsecond))
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("Request started", "method", method, "path", path)
}

func (h logHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
