package overlay

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// NaryFromColorCoded produces an n-ary mask from a color-coded prediction
// image. A pixel belongs to a class when its RGB value equals the class color
// exactly (alpha is ignored). Border pixels match no class, so the objects of
// each class are separated and can be labeled as connected components.
func NaryFromColorCoded(img image.Image, classes ClassMap) (Nary, error) {
	// imaging.Clone gives us a zero-anchored, non-premultiplied copy whatever
	// the decoder produced.
	nrgba := imaging.Clone(img)
	width, height := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	out, err := NewNary(classes, width, height)
	if err != nil {
		return out, err
	}

	for _, class := range classes.Sorted() {
		col, err := nrgbaFromColorCode(class.Color)
		if err != nil {
			return out, fmt.Errorf("class %s: %w", class.Name, err)
		}

		mask := make([]bool, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := nrgba.PixOffset(x, y)
				p := nrgba.Pix[i : i+3 : i+3]
				mask[y*width+x] = p[0] == col.R && p[1] == col.G && p[2] == col.B
			}
		}

		labeled, err := ConnectedComponents(mask, width, height)
		if err != nil {
			return out, fmt.Errorf("class %s: %w", class.Name, err)
		}
		out.Channels[class.ID] = labeled
	}

	return out, nil
}

// CountColors tallies the pixels of every color in the image, keyed by
// "#rrggbb". Useful to spot predictions drawn with an unexpected palette.
func CountColors(img image.Image) map[string]int {
	nrgba := imaging.Clone(img)
	out := make(map[string]int)

	b := nrgba.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out[colorCodeFromNRGBA(nrgba.NRGBAAt(x, y))]++
		}
	}

	return out
}
