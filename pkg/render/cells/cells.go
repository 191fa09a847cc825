// Package cells renders widgets onto a terminal character grid.
//
// A [Grid] is a [render.Surface] whose pixels are terminal cells. Cells are
// roughly twice as tall as they are wide, so a grid maps each cell to a
// w×2w pixel block and circles stay round on screen.
//
// Shapes smaller than a cell collapse to a single glyph at their center, so
// every dot, marker and highlight stays visible at any terminal size.
package cells

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dotring/pkg/render"
)

// Glyphs used by the grid.
const (
	GlyphRing      = '·'
	GlyphDot       = '●'
	GlyphMarker    = '∙'
	GlyphHighlight = '○'
	GlyphOutline   = '◦'
	GlyphShade     = '░'
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2.0

type cell struct {
	r     rune
	color string
}

// Grid is a terminal-sized drawing surface.
type Grid struct {
	cols, rows int
	cellW      float64
	cellH      float64
	cells      [][]cell
}

// Fit returns a grid no larger than cols×rows that holds a w×h pixel surface
// at a uniform scale.
func Fit(cols, rows int, w, h float64) *Grid {
	cols = max(cols, 1)
	rows = max(rows, 1)
	cw := math.Max(w/float64(cols), h/(cellAspect*float64(rows)))
	if !(cw > 0) {
		cw = 1
	}
	g := &Grid{
		cols:  min(cols, int(math.Ceil(w/cw))),
		rows:  min(rows, int(math.Ceil(h/(cw*cellAspect)))),
		cellW: cw,
		cellH: cw * cellAspect,
	}
	g.cols = max(g.cols, 1)
	g.rows = max(g.rows, 1)
	g.reset()
	return g
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// ToSurface maps the center of a cell to surface pixels.
func (g *Grid) ToSurface(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * g.cellW, (float64(row) + 0.5) * g.cellH
}

// ToCell maps surface pixels to the cell containing them.
func (g *Grid) ToCell(x, y float64) (col, row int) {
	return int(math.Floor(x / g.cellW)), int(math.Floor(y / g.cellH))
}

// At returns the glyph at a cell, or a space outside the grid.
func (g *Grid) At(col, row int) rune {
	if !g.inside(col, row) {
		return ' '
	}
	return g.cells[row][col].r
}

func (g *Grid) reset() {
	g.cells = make([][]cell, g.rows)
	for i := range g.cells {
		row := make([]cell, g.cols)
		for j := range row {
			row[j] = cell{r: ' '}
		}
		g.cells[i] = row
	}
}

func (g *Grid) inside(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

func (g *Grid) set(col, row int, r rune, color string) {
	if g.inside(col, row) {
		g.cells[row][col] = cell{r: r, color: color}
	}
}

func (g *Grid) plot(x, y float64, r rune, color string) {
	col, row := g.ToCell(x, y)
	g.set(col, row, r, color)
}

// solid reports whether a cell holds a filled dot.
func (g *Grid) solid(col, row int) bool {
	return g.inside(col, row) && g.cells[row][col].r == GlyphDot
}

// subCell reports whether a circle of radius r fits inside one cell.
func (g *Grid) subCell(r float64) bool {
	return 2*r < g.cellW
}

// =============================================================================
// render.Surface
// =============================================================================

// Clear blanks the grid. The pixel size is fixed by Fit.
func (g *Grid) Clear(_, _ float64) { g.reset() }

// StrokeCircle samples the outline densely enough to touch every cell it
// crosses. Outlines never cover a filled dot, and outlines smaller than a
// cell are skipped.
func (g *Grid) StrokeCircle(cx, cy, r float64, st render.Stroke) {
	if g.subCell(r) {
		return
	}
	glyph := GlyphOutline
	if r > 4*g.cellW {
		glyph = GlyphRing
	}
	steps := int(math.Ceil(2*math.Pi*r/(g.cellW/2))) + 8
	for i := range steps {
		a := 2 * math.Pi * float64(i) / float64(steps)
		col, row := g.ToCell(cx+r*math.Cos(a), cy+r*math.Sin(a))
		if !g.solid(col, row) {
			g.set(col, row, glyph, st.Color)
		}
	}
}

// FillCircle fills every cell whose center lies inside the circle and
// always marks the cell under the center.
func (g *Grid) FillCircle(cx, cy, r float64, color string) {
	glyph := fillGlyph(r, color)
	if !g.subCell(r) {
		c0, r0 := g.ToCell(cx-r, cy-r)
		c1, r1 := g.ToCell(cx+r, cy+r)
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				x, y := g.ToSurface(col, row)
				if math.Hypot(x-cx, y-cy) <= r {
					g.set(col, row, glyph, color)
				}
			}
		}
	}
	g.plot(cx, cy, glyph, color)
}

func fillGlyph(r float64, color string) rune {
	switch {
	case r < 2:
		return GlyphMarker
	case render.MustColor(color, render.Black).A < 0xc0:
		return GlyphHighlight
	default:
		return GlyphDot
	}
}

// Line draws a sampled segment.
func (g *Grid) Line(x1, y1, x2, y2 float64, st render.Stroke) {
	steps := int(math.Ceil(math.Hypot(x2-x1, y2-y1)/(g.cellW/2))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		g.plot(x1+(x2-x1)*t, y1+(y2-y1)*t, GlyphRing, st.Color)
	}
}

// FillRect shades the cells covered by the rectangle.
func (g *Grid) FillRect(x, y, w, h float64, color string) {
	c0, r0 := g.ToCell(x, y)
	c1, r1 := g.ToCell(x+w, y+h)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.set(col, row, GlyphShade, color)
		}
	}
}

// StrokeRect draws a box.
func (g *Grid) StrokeRect(x, y, w, h float64, st render.Stroke) {
	c0, r0 := g.ToCell(x, y)
	c1, r1 := g.ToCell(x+w, y+h)
	for col := c0 + 1; col < c1; col++ {
		g.set(col, r0, '─', st.Color)
		g.set(col, r1, '─', st.Color)
	}
	for row := r0 + 1; row < r1; row++ {
		g.set(c0, row, '│', st.Color)
		g.set(c1, row, '│', st.Color)
	}
	g.set(c0, r0, '┌', st.Color)
	g.set(c1, r0, '┐', st.Color)
	g.set(c0, r1, '└', st.Color)
	g.set(c1, r1, '┘', st.Color)
}

// Text writes text centered on the anchor cell, one rune per cell. Labels
// land in the same row as their dot at most scales, so text that would cover
// a dot moves to the row above or below, and otherwise flows around it.
func (g *Grid) Text(x, y float64, text string, f render.Font) {
	runes := []rune(text)
	col, row := g.ToCell(x, y)
	col -= len(runes) / 2

	fits := func(row int) bool {
		for i := range runes {
			if !g.inside(col+i, row) || g.solid(col+i, row) {
				return false
			}
		}
		return true
	}
	for _, r := range []int{row, row - 1, row + 1} {
		if fits(r) {
			row = r
			break
		}
	}
	for i, r := range runes {
		if !g.solid(col+i, row) {
			g.set(col+i, row, r, f.Color)
		}
	}
}

// =============================================================================
// Output
// =============================================================================

// Plain returns the grid as text without color.
func (g *Grid) Plain() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteRune(c.r)
		}
	}
	return b.String()
}

// String returns the grid with each run of same-colored cells styled by
// lipgloss.
func (g *Grid) String() string {
	styles := map[string]lipgloss.Style{}
	style := func(color string) lipgloss.Style {
		if s, ok := styles[color]; ok {
			return s
		}
		s := lipgloss.NewStyle()
		if color != "" {
			s = s.Foreground(lipgloss.Color(render.Hex(render.MustColor(color, render.Black))))
		}
		styles[color] = s
		return s
	}

	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(style(runColor).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			color := c.color
			if c.r == ' ' {
				color = ""
			}
			if color != runColor {
				flush()
				runColor = color
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}
