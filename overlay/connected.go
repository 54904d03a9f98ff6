package overlay

import (
	"fmt"

	"github.com/theodesp/unionfind"
)

// Following the guide at
// http://aishack.in/tutorials/connected-component-labelling/ with
// 8-connectivity, which is what scikit-image uses for 2D masks.

// ConnectedComponents labels the 8-connected foreground regions of a
// row-major boolean mask. Objects are numbered 1..n in the raster order of
// their first pixel.
func ConnectedComponents(mask []bool, width, height int) (*LabelMap, error) {
	if len(mask) != width*height {
		return nil, fmt.Errorf("Mask has %d pixels but dimensions are %dx%d", len(mask), width, height)
	}

	out := NewLabelMap(width, height)

	// First pass: provisional labels, remembering which ones touch.
	type equivalence struct{ a, b uint32 }
	var joins []equivalence
	var nextLabel uint32 = 1

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y*width+x] {
				continue
			}

			var assigned uint32
			for _, n := range previousNeighbors(out, x, y) {
				if n == 0 {
					continue
				}
				if assigned == 0 {
					assigned = n
					continue
				}
				if n != assigned {
					joins = append(joins, equivalence{assigned, n})
					if n < assigned {
						assigned = n
					}
				}
			}

			if assigned == 0 {
				// If not, it gets its own label
				assigned = nextLabel
				nextLabel++
			}

			out.Set(x, y, assigned)
		}
	}

	if nextLabel == 1 {
		return out, nil
	}

	uf := unionfind.New(int(nextLabel))
	for _, j := range joins {
		uf.Union(int(j.a), int(j.b))
	}

	// Second pass: reconcile the adjacent labels and renumber by first
	// appearance.
	final := make(map[int]uint32)
	var nextFinal uint32 = 1
	for i, v := range out.Pix {
		if v == 0 {
			continue
		}

		root := uf.Root(int(v))
		id, exists := final[root]
		if !exists {
			id = nextFinal
			final[root] = id
			nextFinal++
		}
		out.Pix[i] = id
	}

	return out, nil
}

// previousNeighbors returns the labels of the already-visited 8-neighbors of
// (x, y): left, upper-left, up and upper-right. Missing neighbors are 0.
func previousNeighbors(l *LabelMap, x, y int) [4]uint32 {
	var out [4]uint32

	if x > 0 {
		out[0] = l.At(x-1, y)
	}
	if y > 0 {
		if x > 0 {
			out[1] = l.At(x-1, y-1)
		}
		out[2] = l.At(x, y-1)
		if x+1 < l.Width {
			out[3] = l.At(x+1, y-1)
		}
	}

	return out
}
