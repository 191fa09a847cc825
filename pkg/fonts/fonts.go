// Package fonts provides the typeface used for dot labels.
//
// Raster surfaces draw with Go Regular, which ships inside
// golang.org/x/image and needs no files on disk. SVG and HTML output name
// [FontFamily] and let the viewer resolve it.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family for labels.
const FontFamily = "Arial"

// FallbackFontFamily lists CSS fallbacks for systems without Arial.
const FallbackFontFamily = `Arial, 'Helvetica Neue', Helvetica, sans-serif`

var (
	parsed    *truetype.Font
	parseErr  error
	parseOnce sync.Once
)

// Face returns a new face at size points. The parsed font is shared, but a
// face keeps a glyph cache and must not be used from multiple goroutines.
func Face(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		parsed, parseErr = truetype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}
