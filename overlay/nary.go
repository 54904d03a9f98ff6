package overlay

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/carbocation/pfx"
	"github.com/tj/go-rle"
)

// Nary is an n-ary mask: one LabelMap per class channel, all with the same
// dimensions. Channels is indexed by Class.ID.
type Nary struct {
	Classes  ClassMap
	Channels []*LabelMap
}

// NewNary allocates an empty n-ary mask with one channel per class.
func NewNary(classes ClassMap, width, height int) (Nary, error) {
	if !classes.Valid() {
		return Nary{}, fmt.Errorf("Class map %v is not bijective", classes)
	}

	out := Nary{
		Classes:  classes,
		Channels: make([]*LabelMap, classes.NumChannels()),
	}
	for _, c := range classes {
		out.Channels[c.ID] = NewLabelMap(width, height)
	}

	return out, nil
}

// Channel returns the LabelMap of the named class.
func (n Nary) Channel(name string) (*LabelMap, error) {
	c, err := n.Classes.Lookup(name)
	if err != nil {
		return nil, err
	}
	if int(c.ID) >= len(n.Channels) || n.Channels[c.ID] == nil {
		return nil, fmt.Errorf("Class %s has no channel %d in this mask", name, c.ID)
	}

	return n.Channels[c.ID], nil
}

// Width and Height return the shared extent of the channels.
func (n Nary) Width() int {
	for _, ch := range n.Channels {
		if ch != nil {
			return ch.Width
		}
	}
	return 0
}

func (n Nary) Height() int {
	for _, ch := range n.Channels {
		if ch != nil {
			return ch.Height
		}
	}
	return 0
}

// naryFile is the on-disk layout of a .nary.json file. Each channel is the
// run-length encoding of its row-major pixel IDs.
type naryFile struct {
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Classes  ClassMap `json:"classes"`
	Channels [][]byte `json:"channels"`
}

// WriteJSON serializes the mask with run-length encoded channels.
func (n Nary) WriteJSON(w io.Writer) error {
	out := naryFile{
		Width:    n.Width(),
		Height:   n.Height(),
		Classes:  n.Classes,
		Channels: make([][]byte, len(n.Channels)),
	}

	for i, ch := range n.Channels {
		if ch == nil {
			continue
		}

		pixels := make([]int64, len(ch.Pix))
		for j, v := range ch.Pix {
			pixels[j] = int64(v)
		}
		out.Channels[i] = rle.EncodeInt64(pixels)
	}

	return pfx.Err(json.NewEncoder(w).Encode(out))
}

// ReadNary reads a mask written by WriteJSON.
func ReadNary(r io.Reader) (Nary, error) {
	var in naryFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Nary{}, pfx.Err(err)
	}

	out := Nary{
		Classes:  in.Classes,
		Channels: make([]*LabelMap, len(in.Channels)),
	}

	for i, encoded := range in.Channels {
		if encoded == nil {
			continue
		}

		pixels, err := rle.DecodeInt64(encoded)
		if err != nil {
			return Nary{}, pfx.Err(fmt.Errorf("channel %d: %w", i, err))
		}
		if len(pixels) != in.Width*in.Height {
			return Nary{}, fmt.Errorf("Channel %d decoded to %d pixels, expected %dx%d", i, len(pixels), in.Width, in.Height)
		}

		ch := NewLabelMap(in.Width, in.Height)
		for j, v := range pixels {
			if v < 0 {
				return Nary{}, fmt.Errorf("Channel %d has negative object ID %d", i, v)
			}
			ch.Pix[j] = uint32(v)
		}
		out.Channels[i] = ch
	}

	return out, nil
}
