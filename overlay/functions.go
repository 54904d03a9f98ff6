package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// nrgbaFromColorCode parses "#rrggbb" (the leading # is optional) into an
// opaque color.
func nrgbaFromColorCode(colorCode string) (color.NRGBA, error) {
	colorCode = strings.ReplaceAll(colorCode, "#", "")

	if len(colorCode) != 6 {
		return color.NRGBA{}, fmt.Errorf("Color code %q is not of the form #rrggbb", colorCode)
	}

	// Parse each channel
	r, err := strconv.ParseUint(colorCode[0:2], 16, 8)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := strconv.ParseUint(colorCode[2:4], 16, 8)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := strconv.ParseUint(colorCode[4:6], 16, 8)
	if err != nil {
		return color.NRGBA{}, err
	}

	return color.NRGBA{
		R: uint8(r),
		G: uint8(g),
		B: uint8(b),
		A: 255,
	}, nil
}

// colorCodeFromNRGBA is the inverse of nrgbaFromColorCode, ignoring alpha.
func colorCodeFromNRGBA(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
