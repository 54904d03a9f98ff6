package overlay

import (
	"fmt"
	"sort"
)

// Class names used by the nuclei challenge. Ambiguous only exists in
// hand-drawn annotations and is never scored.
const (
	ClassEpithelial = "Epithelial"
	ClassLymphocyte = "Lymphocyte"
	ClassNeutrophil = "Neutrophil"
	ClassMacrophage = "Macrophage"
	ClassAmbiguous  = "Ambiguous"
)

// BorderColor is the color drawn around each object in color-coded
// predictions. Border pixels belong to no class.
const BorderColor = "#8b4513"

// A Class tracks the channel ID of a nucleus class together with its
// human-interpretable color (in RGB hex, e.g., #FF0000 for red) in
// color-coded prediction images.
type Class struct {
	Name      string `json:"-"`
	ID        uint   `json:"id"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order,omitempty"`
}

// ClassMap ([string class name]Class) keeps track of the relationship between
// class names, their channel in an n-ary mask, and their prediction color.
type ClassMap map[string]Class

// DefaultClasses returns the four scored classes of the challenge.
func DefaultClasses() ClassMap {
	return ClassMap{
		ClassEpithelial: {ID: 0, Color: "#ff0000"},
		ClassLymphocyte: {ID: 1, Color: "#ffff00"},
		ClassNeutrophil: {ID: 2, Color: "#0000ff"},
		ClassMacrophage: {ID: 3, Color: "#00ff00"},
	}
}

// AnnotationClasses returns the scored classes plus the Ambiguous channel
// that appears in hand-drawn annotations.
func AnnotationClasses() ClassMap {
	out := DefaultClasses()
	out[ClassAmbiguous] = Class{ID: 4}
	return out
}

// Valid ensures that the ClassMap is bijective between names and channel IDs.
func (c ClassMap) Valid() bool {
	inverse := make(map[uint]string)
	for k, v := range c {
		inverse[v.ID] = k
	}

	return len(c) == len(inverse)
}

// NumChannels is the number of channels an n-ary mask needs to hold every
// class, i.e., the highest channel ID plus one.
func (c ClassMap) NumChannels() int {
	n := 0
	for _, v := range c {
		if int(v.ID)+1 > n {
			n = int(v.ID) + 1
		}
	}

	return n
}

// Lookup returns the named class with its Name populated.
func (c ClassMap) Lookup(name string) (Class, error) {
	v, exists := c[name]
	if !exists {
		return Class{}, fmt.Errorf("Class %q is not in the class map (known: %v)", name, c.Names())
	}
	v.Name = name

	return v, nil
}

// Names lists the class names in sorted order.
func (c ClassMap) Names() []string {
	out := make([]string, 0, len(c))
	for _, v := range c.Sorted() {
		out = append(out, v.Name)
	}

	return out
}

// Sorted returns the classes ordered by SortOrder, then by channel ID.
func (c ClassMap) Sorted() []Class {
	out := make([]Class, 0, len(c))

	for k, v := range c {
		v.Name = k
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}

		return out[i].ID < out[j].ID
	})

	return out
}
