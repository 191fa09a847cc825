// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional and backend-agnostic. Consumers register hook
// implementations at startup; libraries call the registered hooks (no-op by
// default) when something interesting happens:
//   - [WidgetHooks]: dots added, removed, cleared; selection changes
//   - [RenderHooks]: surface renders and their durations
//   - [HTTPHooks]: requests served by the demo host
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWidgetHooks(&myWidgetHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Widget().OnDotAdded(ctx, angle, count)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Widget Hooks
// =============================================================================

// WidgetHooks receives events from widget controllers.
type WidgetHooks interface {
	// OnDotAdded records a placement; angle is where the new dot sits after
	// re-spacing, count the new size.
	OnDotAdded(ctx context.Context, angle float64, count int)

	// OnDotRemoved records a removal of the dot at index.
	OnDotRemoved(ctx context.Context, index, count int)

	// OnCleared records a remove-all.
	OnCleared(ctx context.Context, removed int)

	// OnSelectionChanged records selection moves; index is -1 when cleared.
	OnSelectionChanged(ctx context.Context, index int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from surface renderers.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, format string, dots int)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP host.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWidgetHooks is a no-op implementation of WidgetHooks.
type NoopWidgetHooks struct{}

func (NoopWidgetHooks) OnDotAdded(context.Context, float64, int) {}
func (NoopWidgetHooks) OnDotRemoved(context.Context, int, int)   {}
func (NoopWidgetHooks) OnCleared(context.Context, int)           {}
func (NoopWidgetHooks) OnSelectionChanged(context.Context, int)  {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, int)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	widgetHooks WidgetHooks = NoopWidgetHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetWidgetHooks registers custom widget hooks.
// This should be called once at application startup before any widget is built.
func SetWidgetHooks(h WidgetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		widgetHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Widget returns the registered widget hooks.
func Widget() WidgetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return widgetHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	widgetHooks = NoopWidgetHooks{}
	renderHooks = NoopRenderHooks{}
	httpHooks = NoopHTTPHooks{}
}
