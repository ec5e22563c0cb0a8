// Package fonts provides the typefaces used for diagram labels.
//
// Labels use the Go font family from golang.org/x/image/font/gofont, which is
// compiled into the binary, so raster output never depends on fonts installed
// on the host.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name for SVG labels.
const FontFamily = "Go"

// FallbackFontFamily lists fonts for viewers without the Go family installed.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	regular, bold *truetype.Font
	parseErr      error
	parseOnce     sync.Once
)

func parse() {
	regular, parseErr = truetype.Parse(goregular.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse regular font: %w", parseErr)
		return
	}
	bold, parseErr = truetype.Parse(gobold.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse bold font: %w", parseErr)
	}
}

// Face returns a label face of the given point size at 72 DPI.
func Face(size float64, isBold bool) (font.Face, error) {
	parseOnce.Do(parse)
	if parseErr != nil {
		return nil, parseErr
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
