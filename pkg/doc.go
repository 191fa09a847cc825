// Package pkg provides the core libraries for dotring, an interactive
// circular layout widget.
//
// # Overview
//
// A dotring widget is a ring with colored dots placed evenly around it. A
// dot dropped or clicked onto the ring snaps to the nearest slot of the
// layout the ring will have after the insertion, and every change re-spaces
// the remaining dots. The pkg directory is organized into three areas:
//
//  1. Domain logic: [ring] geometry and [widget] state and event handling
//  2. Drawing: [render] surfaces, [render/sink] output formats and
//     [render/cells] terminal grids
//  3. Support: [config], [script], [errors], [observability], [fonts] and
//     [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	pointer, drag or script events
//	         ↓
//	    [widget] Controller (hover, snap, insert, remove, redistribute)
//	         ↓
//	    [render] Draw onto a Surface
//	         ↓
//	    SVG / PNG / JSON / HTML / terminal cells
//
// # Quick Start
//
//	c, _ := widget.New(widget.Options{})
//	c.Handle(widget.Event{Kind: widget.EventDragOver, X: 650, Y: 195})
//	c.Handle(widget.Event{Kind: widget.EventDrop, Payload: &widget.DragPayload{Color: "#36A2EB"}})
//	svg := sink.RenderSVG(c)
//
// # Main Packages
//
// [ring] - Pure circle geometry: even spacing, snapping an angle to the
// nearest valid slot, hit testing and angle normalization.
//
// [widget] - The Controller that owns one widget instance. Events are
// dispatched through a handler table keyed by event kind; the managed and
// toggle variants share one implementation.
//
// [render] - The Surface interface and Draw, which repaints a controller.
// [render/sink] turns a controller into SVG, PNG, JSON snapshots or HTML
// markup; [render/cells] draws onto a terminal cell grid.
//
// [script] - TOML scenario files replayed against a controller.
//
// [config] - The TOML configuration file read by the CLI.
//
// [ring]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/ring
// [widget]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/widget
// [render]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/render/sink
// [render/cells]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/render/cells
// [config]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/config
// [script]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/script
// [errors]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/observability
// [fonts]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/fonts
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dotring/pkg/buildinfo
package pkg
