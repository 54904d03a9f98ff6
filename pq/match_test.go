package pq

import (
	"errors"
	"math"
	"testing"

	"github.com/carbocation/nucleipq/overlay"
)

func mustRows(t *testing.T, rows [][]uint32) *overlay.LabelMap {
	t.Helper()

	lm, err := overlay.LabelMapFromRows(rows)
	if err != nil {
		t.Fatal(err)
	}

	return lm
}

func TestMatchEmptyMaps(t *testing.T) {
	res, err := MatchInstances(overlay.NewLabelMap(4, 3), overlay.NewLabelMap(4, 3))
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 0 || res.FP != 0 || res.FN != 0 || len(res.IoUs) != 0 {
		t.Errorf("Expected an empty result, got %+v", res)
	}
	if res.IoUs == nil {
		t.Error("IoUs should be an empty list, not nil")
	}
	if pq := res.PQ(); pq != 0 {
		t.Errorf("Expected PQ 0, got %g", pq)
	}
}

func TestMatchIdenticalObject(t *testing.T) {
	gt := mustRows(t, [][]uint32{
		{0, 5, 5},
		{0, 5, 0},
	})
	pred := mustRows(t, [][]uint32{
		{0, 2, 2},
		{0, 2, 0},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 1 || res.FP != 0 || res.FN != 0 {
		t.Fatalf("Expected TP=1 FP=0 FN=0, got %+v", res)
	}
	if res.IoUs[0] != 1 {
		t.Errorf("Expected IoU 1, got %g", res.IoUs[0])
	}
	if m := res.Matches[0]; m.GroundTruth != 5 || m.Predicted != 2 {
		t.Errorf("Unexpected match %+v", m)
	}
	if pq := res.PQ(); pq != 1 {
		t.Errorf("Expected PQ 1, got %g", pq)
	}
}

func TestMatchDisjointObjects(t *testing.T) {
	gt := mustRows(t, [][]uint32{
		{1, 1, 0, 0},
	})
	pred := mustRows(t, [][]uint32{
		{0, 0, 1, 1},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 0 || res.FN != 1 || res.FP != 1 {
		t.Errorf("Expected TP=0 FN=1 FP=1, got %+v", res)
	}
}

func TestMatchThresholdIsStrict(t *testing.T) {
	// IoU is exactly 2/4 = 0.5, which does not match
	gt := mustRows(t, [][]uint32{
		{1, 1, 1, 0},
	})
	pred := mustRows(t, [][]uint32{
		{0, 3, 3, 3},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 0 || res.FN != 1 || res.FP != 1 {
		t.Errorf("Expected no match at IoU 0.5, got %+v", res)
	}
}

func TestMatchThresholdDefaults(t *testing.T) {
	// IoU is 1/5 = 0.2
	gt := mustRows(t, [][]uint32{
		{1, 1, 1, 0, 0},
	})
	pred := mustRows(t, [][]uint32{
		{0, 0, 2, 2, 2},
	})

	for _, threshold := range []float64{0, -1} {
		res, err := NewMatcher(threshold, LastWrite).Match(gt, pred)
		if err != nil {
			t.Fatal(err)
		}
		if res.TP != 0 || res.FN != 1 {
			t.Errorf("Threshold %g should fall back to %g, got %+v", threshold, DefaultThreshold, res)
		}
	}

	res, err := NewMatcher(math.SmallestNonzeroFloat64, LastWrite).Match(gt, pred)
	if err != nil {
		t.Fatal(err)
	}
	if res.TP != 1 || res.FP != 0 || res.FN != 0 || math.Abs(res.IoUs[0]-0.2) > 1e-9 {
		t.Errorf("Expected any overlap to match, got %+v", res)
	}
}

func TestMatchUnionIsOverWholeImage(t *testing.T) {
	// The predicted object extends well beyond the ground truth support:
	// intersection 2, union 5.
	gt := mustRows(t, [][]uint32{
		{1, 1, 0, 0, 0},
	})
	pred := mustRows(t, [][]uint32{
		{4, 4, 4, 4, 4},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}
	if res.TP != 0 {
		t.Errorf("Expected no match for IoU 0.4, got %+v", res)
	}
}

func TestMatchNonContiguousIDsKeepGroundTruthOrder(t *testing.T) {
	gt := mustRows(t, [][]uint32{
		{40, 40, 40, 0, 3, 3},
		{40, 40, 40, 0, 3, 3},
	})
	pred := mustRows(t, [][]uint32{
		{2, 2, 2, 0, 9, 9},
		{2, 2, 0, 0, 9, 0},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 2 || res.FP != 0 || res.FN != 0 {
		t.Fatalf("Expected two matches, got %+v", res)
	}

	// Ground truth 3 comes first: 3/4, then 40: 5/6
	if res.Matches[0].GroundTruth != 3 || res.Matches[0].Predicted != 9 {
		t.Errorf("Unexpected first match %+v", res.Matches[0])
	}
	if math.Abs(res.IoUs[0]-0.75) > 1e-12 || math.Abs(res.IoUs[1]-5.0/6.0) > 1e-12 {
		t.Errorf("Unexpected IoUs %v", res.IoUs)
	}
}

// tieFixture has ground truth 1 over ten pixels, overlapped by predicted 5
// (IoU 0.6) and predicted 7 (IoU 0.4).
func tieFixture(t *testing.T) (*overlay.LabelMap, *overlay.LabelMap) {
	gt := mustRows(t, [][]uint32{
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	})
	pred := mustRows(t, [][]uint32{
		{5, 5, 5, 5, 5, 5, 7, 7, 7, 7},
	})

	return gt, pred
}

func TestMatchLastWritePolicy(t *testing.T) {
	gt, pred := tieFixture(t)

	res, err := NewMatcher(0.3, LastWrite).Match(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 1 || res.FP != 1 || res.FN != 0 {
		t.Fatalf("Unexpected counts %+v", res)
	}
	if res.Matches[0].Predicted != 7 || math.Abs(res.IoUs[0]-0.4) > 1e-12 {
		t.Errorf("Expected the last candidate (7, 0.4) to win, got %+v", res.Matches[0])
	}
}

func TestMatchBestIoUPolicy(t *testing.T) {
	gt, pred := tieFixture(t)

	res, err := NewMatcher(0.3, BestIoU).Match(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 1 || res.FP != 1 || res.FN != 0 {
		t.Fatalf("Unexpected counts %+v", res)
	}
	if res.Matches[0].Predicted != 5 || math.Abs(res.IoUs[0]-0.6) > 1e-12 {
		t.Errorf("Expected the best candidate (5, 0.6) to win, got %+v", res.Matches[0])
	}
}

func TestMatchSharedPredictionIsConsumedOnce(t *testing.T) {
	// With a low threshold two ground truth objects can both claim predicted
	// object 5. Both are true positives and 5 is removed from the pool once.
	gt := mustRows(t, [][]uint32{
		{1, 1, 2, 2, 0},
	})
	pred := mustRows(t, [][]uint32{
		{5, 5, 5, 5, 6},
	})

	res, err := NewMatcher(0.1, LastWrite).Match(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != 2 || res.FN != 0 || res.FP != 1 {
		t.Errorf("Expected TP=2 FN=0 FP=1, got %+v", res)
	}
}

func TestMatchCountInvariants(t *testing.T) {
	gt := mustRows(t, [][]uint32{
		{1, 1, 0, 2, 2, 0, 3},
		{1, 1, 0, 2, 2, 0, 0},
	})
	pred := mustRows(t, [][]uint32{
		{8, 8, 0, 0, 9, 0, 0},
		{8, 8, 0, 0, 9, 0, 4},
	})

	res, err := MatchInstances(gt, pred)
	if err != nil {
		t.Fatal(err)
	}

	if res.TP != len(res.IoUs) {
		t.Errorf("TP %d != len(IoUs) %d", res.TP, len(res.IoUs))
	}
	if res.TP+res.FN != len(gt.IDs()) {
		t.Errorf("TP+FN = %d, expected %d", res.TP+res.FN, len(gt.IDs()))
	}
	if res.TP+res.FP != len(pred.IDs()) {
		t.Errorf("TP+FP = %d, expected %d", res.TP+res.FP, len(pred.IDs()))
	}

	// 1<->8 is exact; 2<->9 is 2/4
	if res.TP != 1 || res.FN != 2 || res.FP != 2 {
		t.Errorf("Unexpected counts %+v", res)
	}
}

func TestMatchShapeMismatch(t *testing.T) {
	_, err := MatchInstances(overlay.NewLabelMap(3, 2), overlay.NewLabelMap(2, 3))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}

	_, err = MatchInstances(nil, overlay.NewLabelMap(2, 3))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for a nil map, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	for _, v := range []struct {
		name     string
		expected Policy
	}{
		{"last-write", LastWrite},
		{"LAST_WRITE", LastWrite},
		{"best-iou", BestIoU},
		{" BestIoU ", BestIoU},
	} {
		p, err := ParsePolicy(v.name)
		if err != nil {
			t.Errorf("%q: %v", v.name, err)
			continue
		}
		if p != v.expected {
			t.Errorf("%q: got %s, expected %s", v.name, p, v.expected)
		}
	}

	if _, err := ParsePolicy("first-write"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("Expected ErrUnknownPolicy, got %v", err)
	}
}
