package overlay

import (
	"fmt"
	"image"
	"sort"
)

// LabelMap is a 2D grid of object identifiers for a single class. 0 is
// background and every positive value identifies one object instance. Pixels
// are stored row-major.
type LabelMap struct {
	Width  int
	Height int
	Pix    []uint32
}

// NewLabelMap allocates an all-background grid.
func NewLabelMap(width, height int) *LabelMap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	return &LabelMap{
		Width:  width,
		Height: height,
		Pix:    make([]uint32, width*height),
	}
}

// LabelMapFromRows builds a grid from rows of identifiers. All rows must have
// the same length.
func LabelMapFromRows(rows [][]uint32) (*LabelMap, error) {
	if len(rows) == 0 {
		return NewLabelMap(0, 0), nil
	}

	out := NewLabelMap(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != out.Width {
			return nil, fmt.Errorf("Row %d has %d columns, expected %d", y, len(row), out.Width)
		}
		copy(out.Pix[y*out.Width:], row)
	}

	return out, nil
}

func (l *LabelMap) At(x, y int) uint32 {
	return l.Pix[y*l.Width+x]
}

func (l *LabelMap) Set(x, y int, id uint32) {
	l.Pix[y*l.Width+x] = id
}

// Bounds returns the grid extent as an image rectangle anchored at 0,0.
func (l *LabelMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// SameShape reports whether both grids have identical spatial dimensions.
func (l *LabelMap) SameShape(other *LabelMap) bool {
	return l.Width == other.Width && l.Height == other.Height
}

func (l *LabelMap) Clone() *LabelMap {
	out := &LabelMap{
		Width:  l.Width,
		Height: l.Height,
		Pix:    make([]uint32, len(l.Pix)),
	}
	copy(out.Pix, l.Pix)

	return out
}

// IDs returns the distinct non-zero identifiers in ascending order.
func (l *LabelMap) IDs() []uint32 {
	seen := make(map[uint32]struct{})
	for _, v := range l.Pix {
		if v == 0 {
			continue
		}
		seen[v] = struct{}{}
	}

	out := make([]uint32, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Areas counts the pixels belonging to each non-zero identifier.
func (l *LabelMap) Areas() map[uint32]int {
	out := make(map[uint32]int)
	for _, v := range l.Pix {
		if v == 0 {
			continue
		}
		out[v]++
	}

	return out
}
