package views

import (
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DefaultPadding is the padding around the text of a TextView, in pixels.
const DefaultPadding = 6

// Style is the shared appearance of TextViews. Styles are read concurrently
// by measurement and drawing and must not be modified once in use.
type Style struct {
	// Face must be safe for concurrent use when TextMeasurer is shared
	// between layouts.
	Face       font.Face
	Padding    float64
	Radius     float64
	Background color.Color
	Foreground color.Color
}

var defaultStyle = &Style{
	Face:       basicfont.Face7x13,
	Padding:    DefaultPadding,
	Radius:     4,
	Background: color.RGBA{R: 0xec, G: 0xef, B: 0xf4, A: 0xff},
	Foreground: color.RGBA{R: 0x2e, G: 0x34, B: 0x40, A: 0xff},
}

// DefaultStyle returns the style used by views without one: the 7x13
// bitmap face on a light background.
func DefaultStyle() *Style {
	return defaultStyle
}

func (s *Style) face() font.Face {
	if s == nil || s.Face == nil {
		return basicfont.Face7x13
	}
	return s.Face
}

// lineHeight returns the distance between baselines in pixels.
func (s *Style) lineHeight() float64 {
	return float64(s.face().Metrics().Height.Ceil())
}
