package pq

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/nucleipq/overlay"
)

// DefaultThreshold is the IoU a ground truth / prediction pair must strictly
// exceed to be matched.
const DefaultThreshold = 0.5

// Policy decides which candidate wins when a ground truth object overlaps more
// than one predicted object above the threshold.
type Policy uint8

const (
	// LastWrite keeps the candidate with the highest predicted ID, i.e., the
	// last one evaluated. This reproduces the challenge's published scores.
	LastWrite Policy = iota

	// BestIoU keeps the candidate with the highest IoU. Ties keep the lower
	// predicted ID.
	BestIoU
)

func (p Policy) String() string {
	switch p {
	case LastWrite:
		return "last-write"
	case BestIoU:
		return "best-iou"
	}

	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy accepts the names produced by Policy.String.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "last-write", "last_write", "lastwrite":
		return LastWrite, nil
	case "best-iou", "best_iou", "bestiou":
		return BestIoU, nil
	}

	return LastWrite, fmt.Errorf("%q: %w", name, ErrUnknownPolicy)
}

// Match pairs a ground truth object with the predicted object it was matched
// to.
type Match struct {
	GroundTruth uint32
	Predicted   uint32
	IoU         float64
}

// MatchResult holds the outcome of matching one class of one image. IoUs and
// Matches are in ascending ground truth ID order; len(IoUs) == TP.
type MatchResult struct {
	IoUs    []float64
	TP      int
	FP      int
	FN      int
	Matches []Match
}

// A Matcher pairs ground truth objects with predicted objects of the same
// class. The zero value uses DefaultThreshold and LastWrite.
type Matcher struct {
	// Threshold is the IoU a pair must strictly exceed. Zero (or any
	// non-positive value) means DefaultThreshold; to accept any overlap, use
	// a tiny positive value such as math.SmallestNonzeroFloat64.
	Threshold float64
	Policy    Policy
}

func NewMatcher(threshold float64, policy Policy) Matcher {
	return Matcher{Threshold: threshold, Policy: policy}
}

func (m Matcher) threshold() float64 {
	if m.Threshold <= 0 {
		return DefaultThreshold
	}

	return m.Threshold
}

// MatchInstances matches with the zero Matcher.
func MatchInstances(groundTruth, predicted *overlay.LabelMap) (MatchResult, error) {
	return Matcher{}.Match(groundTruth, predicted)
}

type pair struct {
	gt, pred uint32
}

// Match finds, for every ground truth object, the predicted object whose IoU
// exceeds the threshold (see Policy for multiple candidates). IoU is computed
// over the whole image. Each matched ground truth object consumes its
// predicted object; predicted objects never consumed are false positives.
func (m Matcher) Match(groundTruth, predicted *overlay.LabelMap) (MatchResult, error) {
	if groundTruth == nil || predicted == nil {
		return MatchResult{}, fmt.Errorf("nil label map: %w", ErrShapeMismatch)
	}
	if !groundTruth.SameShape(predicted) || len(groundTruth.Pix) != len(predicted.Pix) {
		return MatchResult{}, fmt.Errorf("ground truth is %dx%d, prediction is %dx%d: %w",
			groundTruth.Width, groundTruth.Height, predicted.Width, predicted.Height, ErrShapeMismatch)
	}

	// One pass over the pixels gives every object's area and the size of
	// every non-empty intersection.
	gtArea := make(map[uint32]int)
	predArea := make(map[uint32]int)
	intersection := make(map[pair]int)
	for i, g := range groundTruth.Pix {
		p := predicted.Pix[i]
		if g != 0 {
			gtArea[g]++
		}
		if p != 0 {
			predArea[p]++
		}
		if g != 0 && p != 0 {
			intersection[pair{g, p}]++
		}
	}

	// Predicted objects overlapping each ground truth object
	partners := make(map[uint32][]uint32)
	for k := range intersection {
		partners[k.gt] = append(partners[k.gt], k.pred)
	}

	threshold := m.threshold()
	out := MatchResult{IoUs: []float64{}, Matches: []Match{}}

	for _, g := range sortedIDs(gtArea) {
		candidates := partners[g]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

		var best Match
		found := false
		for _, p := range candidates {
			inter := intersection[pair{g, p}]
			union := gtArea[g] + predArea[p] - inter
			iou := float64(inter) / float64(union)
			if iou <= threshold {
				continue
			}

			if m.Policy == BestIoU && found && iou <= best.IoU {
				continue
			}
			best = Match{GroundTruth: g, Predicted: p, IoU: iou}
			found = true
		}

		// Unmatched ground truth objects are false negatives
		if !found {
			out.FN++
			continue
		}

		out.TP++
		out.IoUs = append(out.IoUs, best.IoU)
		out.Matches = append(out.Matches, best)
	}

	// Every predicted object starts unconsumed. A match removes its predicted
	// object once; a second match on the same object removes nothing.
	pool := make(map[uint32]struct{}, len(predArea))
	for p := range predArea {
		pool[p] = struct{}{}
	}
	for _, match := range out.Matches {
		delete(pool, match.Predicted)
	}
	out.FP = len(pool)

	return out, nil
}

func sortedIDs(areas map[uint32]int) []uint32 {
	out := make([]uint32, 0, len(areas))
	for id := range areas {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
