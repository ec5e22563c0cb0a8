package render

import "image/color"

// NodeStyle is the paint for one node status.
type NodeStyle struct {
	Fill   color.Color
	Stroke color.Color
	Text   color.Color
}

// Palette maps statuses and edges to colors.
type Palette struct {
	Background   color.Color
	Edge         color.Color
	Selected     NodeStyle
	Prerequisite NodeStyle
	Neutral      NodeStyle
}

// DefaultPalette is the blue highlight scheme: saturated blue for selected
// courses, light blue for their prerequisites and grey for the rest.
func DefaultPalette() Palette {
	var (
		blue500  = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
		blue300  = color.RGBA{0x93, 0xc5, 0xfd, 0xff}
		blue700  = color.RGBA{0x1d, 0x4e, 0xd8, 0xff}
		gray100  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
		gray300  = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
		slate400 = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	)
	return Palette{
		Background:   color.White,
		Edge:         slate400,
		Selected:     NodeStyle{Fill: blue500, Stroke: blue700, Text: color.White},
		Prerequisite: NodeStyle{Fill: blue300, Stroke: blue700, Text: color.Black},
		Neutral:      NodeStyle{Fill: gray100, Stroke: gray300, Text: color.Black},
	}
}

// Node returns the style for a status.
func (p Palette) Node(s Status) NodeStyle {
	switch s {
	case StatusSelected:
		return p.Selected
	case StatusPrerequisite:
		return p.Prerequisite
	default:
		return p.Neutral
	}
}
