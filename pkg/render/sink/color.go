package sink

import (
	"fmt"
	"image/color"
)

// hex formats c as #rrggbb, or "none" for nil and fully transparent colors.
func hex(c color.Color) string {
	if c == nil {
		return "none"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
