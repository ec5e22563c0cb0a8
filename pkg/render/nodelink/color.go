package nodelink

import (
	"fmt"
	"image/color"
)

func hexColor(c color.Color) string {
	if c == nil {
		return "transparent"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
