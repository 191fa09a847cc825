// Package render paints a widget onto a drawing surface.
//
// # Overview
//
// A [Surface] is the 2D render target a host provides: a browser canvas
// through the SVG sink, a raster image, or a terminal cell grid. [Draw]
// repaints a [widget.Controller] onto any surface in a fixed order:
//
//  1. Removal zone (toggle widgets only)
//  2. The ring outline
//  3. Faint markers for the slots a new dot could take
//  4. Placed dots with their labels, the selected dot highlighted
//  5. The hover highlight under a drag in progress
//  6. The position tooltip
//
// Draw only reads the controller. Hosts call it after every event that
// reports a change and after every [widget.Controller.Frame] during a drag.
//
// # Colors
//
// Surfaces receive CSS color strings. Raster and terminal surfaces convert
// them with [ParseColor], which understands hex, rgb()/rgba(), hsl()/hsla()
// and the CSS named colors.
//
// Output formats live in the [sink] and [cells] subpackages.
//
// [widget.Controller]: github.com/matzehuels/dotring/pkg/widget.Controller
// [widget.Controller.Frame]: github.com/matzehuels/dotring/pkg/widget.Controller.Frame
// [sink]: github.com/matzehuels/dotring/pkg/render/sink
// [cells]: github.com/matzehuels/dotring/pkg/render/cells
package render
