package overlay

import "sort"

type Coord struct {
	X, Y int
}

// ConnectedComponent summarizes one object of a LabelMap.
type ConnectedComponent struct {
	ID         uint32
	PixelCount int
	Bounds     struct {
		TopLeft     Coord
		BottomRight Coord
	}
}

// Components returns one entry per non-zero identifier, in ascending ID
// order. Bounds are inclusive.
func (l *LabelMap) Components() []ConnectedComponent {
	byID := make(map[uint32]*ConnectedComponent)

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			id := l.At(x, y)
			if id == 0 {
				continue
			}

			c, exists := byID[id]
			if !exists {
				c = &ConnectedComponent{ID: id}
				c.Bounds.TopLeft = Coord{x, y}
				c.Bounds.BottomRight = Coord{x, y}
				byID[id] = c
			}

			c.PixelCount++
			if x < c.Bounds.TopLeft.X {
				c.Bounds.TopLeft.X = x
			}
			if x > c.Bounds.BottomRight.X {
				c.Bounds.BottomRight.X = x
			}
			// Rows are scanned in order, so only the bottom edge can move
			c.Bounds.BottomRight.Y = y
		}
	}

	out := make([]ConnectedComponent, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
