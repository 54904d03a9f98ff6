package overlay

import (
	"fmt"

	"github.com/fogleman/gg"
)

// An Annotation is one hand-drawn polygon outlining a single nucleus.
// Vertices are in slide pixel coordinates (X is the column).
type Annotation struct {
	Class    string
	Vertices []Coord
}

// RasterizeAnnotations builds an n-ary mask from polygon annotations. The
// object ID of an annotation is its position in anns plus one, so IDs are
// unique across all channels. Later annotations overwrite earlier ones where
// they overlap.
func RasterizeAnnotations(width, height int, anns []Annotation, classes ClassMap) (Nary, error) {
	out, err := NewNary(classes, width, height)
	if err != nil {
		return out, err
	}

	for idx, ann := range anns {
		class, err := classes.Lookup(ann.Class)
		if err != nil {
			return out, fmt.Errorf("annotation %d: %w", idx, err)
		}

		fillPolygon(out.Channels[class.ID], ann.Vertices, uint32(idx+1))
	}

	return out, nil
}

// fillPolygon paints id on every pixel whose center lies inside the polygon.
// Only the polygon's bounding box is rasterized.
func fillPolygon(l *LabelMap, vertices []Coord, id uint32) {
	if len(vertices) < 3 || l.Width == 0 || l.Height == 0 {
		return
	}

	minX, minY := vertices[0].X, vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}

	// Clip the box to the grid
	minX = DilateDimension(minX, l.Width-1, 0, WhichPointTopLeft)
	minY = DilateDimension(minY, l.Height-1, 0, WhichPointTopLeft)
	maxX = DilateDimension(maxX, l.Width-1, 0, WhichPointBottomRight)
	maxY = DilateDimension(maxY, l.Height-1, 0, WhichPointBottomRight)
	if minX > maxX || minY > maxY {
		return
	}

	w, h := maxX-minX+1, maxY-minY+1
	dc := gg.NewContext(w, h)
	dc.SetRGBA(1, 1, 1, 1)

	// Integer vertex coordinates address pixel centers, which gg places at
	// +0.5.
	for i, v := range vertices {
		px := float64(v.X-minX) + 0.5
		py := float64(v.Y-minY) + 0.5
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
	dc.Fill()

	img := dc.Image()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Anti-aliased edges count when at least half covered
			if _, _, _, a := img.At(x, y).RGBA(); a >= 0x8000 {
				l.Set(minX+x, minY+y, id)
			}
		}
	}
}
