package overlay

const (
	WhichPointBottomRight = "br"
	WhichPointTopLeft     = "tl"
)

// Dilate grows every object of the grid by morphological dilation with a disk
// of radius r, to account for borders removed from color-coded predictions.
// Objects are dilated one at a time in ascending ID order on a shared grid:
// a later object overwrites pixels claimed by an earlier one, and an object
// whose pixels were all claimed before its turn disappears. The input is not
// modified.
func Dilate(l *LabelMap, r int) *LabelMap {
	out := l.Clone()
	if r <= 0 {
		return out
	}

	for _, comp := range l.Components() {
		// An object can only shrink before its own turn, so its original
		// bounds still contain whatever is left of it.
		support := make([]Coord, 0, comp.PixelCount)
		for y := comp.Bounds.TopLeft.Y; y <= comp.Bounds.BottomRight.Y; y++ {
			for x := comp.Bounds.TopLeft.X; x <= comp.Bounds.BottomRight.X; x++ {
				if out.At(x, y) == comp.ID {
					support = append(support, Coord{x, y})
				}
			}
		}

		// Paint a disk of radius r (dx*dx+dy*dy <= r*r) around every
		// pixel, clamped to the grid.
		for _, p := range support {
			y0 := DilateDimension(p.Y, out.Height-1, r, WhichPointTopLeft)
			y1 := DilateDimension(p.Y, out.Height-1, r, WhichPointBottomRight)
			x0 := DilateDimension(p.X, out.Width-1, r, WhichPointTopLeft)
			x1 := DilateDimension(p.X, out.Width-1, r, WhichPointBottomRight)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					dx, dy := x-p.X, y-p.Y
					if dx*dx+dy*dy <= r*r {
						out.Set(x, y, comp.ID)
					}
				}
			}
		}
	}

	return out
}

// Dilate applies Dilate to every channel.
func (n Nary) Dilate(r int) Nary {
	out := Nary{
		Classes:  n.Classes,
		Channels: make([]*LabelMap, len(n.Channels)),
	}
	for i, ch := range n.Channels {
		if ch == nil {
			continue
		}
		out.Channels[i] = Dilate(ch, r)
	}

	return out
}

// DilateDimension expands an axis by "dilationFactor" pixels (additive). It
// basically adds or subtracts pixels, while paying attention to not allow the
// position to leave the [0, max] range.
func DilateDimension(pos, max, dilationFactor int, direction string) int {
	out := pos
	if direction == WhichPointBottomRight {
		out = out + dilationFactor
	} else {
		out = out - dilationFactor
	}

	if out < 0 {
		out = 0
	}
	if out > max {
		out = max
	}

	return out
}
