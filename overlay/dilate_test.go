package overlay

import "testing"

func TestDilateSinglePixel(t *testing.T) {
	lm := NewLabelMap(5, 5)
	lm.Set(2, 2, 4)

	out := Dilate(lm, 1)

	// A disk of radius 1 is a plus sign
	if area := out.Areas()[4]; area != 5 {
		t.Errorf("Expected area 5, got %d", area)
	}
	if out.At(1, 1) != 0 || out.At(2, 1) != 4 || out.At(1, 2) != 4 {
		t.Error("Dilation did not produce a plus shape")
	}

	// Input is untouched
	if lm.Areas()[4] != 1 {
		t.Error("Dilate modified its input")
	}
}

func TestDilateLaterObjectsOverwrite(t *testing.T) {
	lm, err := LabelMapFromRows([][]uint32{
		{0, 0, 0, 0, 0},
		{0, 1, 0, 2, 0},
		{0, 0, 0, 0, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := Dilate(lm, 1)

	// Both objects reach (2,1); object 2 is dilated last and keeps it.
	if out.At(2, 1) != 2 {
		t.Errorf("Expected object 2 at (2,1), got %d", out.At(2, 1))
	}
	if out.At(0, 1) != 1 || out.At(4, 1) != 2 {
		t.Error("Objects did not grow away from each other")
	}
}

func TestDilateSwallowsAdjacentObject(t *testing.T) {
	lm, err := LabelMapFromRows([][]uint32{
		{0, 0, 0, 0},
		{0, 1, 2, 0},
		{0, 0, 0, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := Dilate(lm, 1)

	// Object 1 claims the only pixel of object 2 before object 2 is dilated.
	if _, exists := out.Areas()[2]; exists {
		t.Errorf("Expected object 2 to disappear, got %v", out.Areas())
	}
}

func TestDilateClampsAtEdges(t *testing.T) {
	lm := NewLabelMap(3, 3)
	lm.Set(0, 0, 1)

	out := Dilate(lm, 2)
	// Offsets within radius 2 that land inside the grid from the corner
	if area := out.Areas()[1]; area != 6 {
		t.Errorf("Expected area 6, got %d", area)
	}
}

func TestDilateZeroRadius(t *testing.T) {
	lm := NewLabelMap(2, 2)
	lm.Set(1, 1, 9)

	if out := Dilate(lm, 0); out.Areas()[9] != 1 {
		t.Error("Radius 0 should leave objects unchanged")
	}
}
