// Package sink provides output formats for a widget.
//
// # Overview
//
// A "sink" turns the current state of a [widget.Controller] into bytes:
//
//   - SVG: vector drawing via an SVG [render.Surface]
//   - PNG: raster drawing via a fogleman/gg surface
//   - JSON: a [Snapshot] of dots, selection, panel and hover state
//   - HTML: the widget markup with panels, inline SVG and event wiring
//
// SVG and PNG go through [render.Draw], so every format paints the same
// picture:
//
//	svg := sink.RenderSVG(ctrl)
//	png, err := sink.RenderPNG(ctrl, sink.WithScale(2))
//	data, err := sink.RenderJSON(ctrl, sink.WithJSONID(id))
//	html, err := sink.RenderMarkup(ctrl, sink.WithMarkupID(id), sink.WithPage("dotring"))
//
// Every sink reports start and completion to the registered
// observability render hooks.
//
// [widget.Controller]: github.com/matzehuels/dotring/pkg/widget.Controller
// [render.Surface]: github.com/matzehuels/dotring/pkg/render.Surface
// [render.Draw]: github.com/matzehuels/dotring/pkg/render.Draw
package sink
