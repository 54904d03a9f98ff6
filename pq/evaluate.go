package pq

import (
	"fmt"

	"github.com/carbocation/nucleipq/overlay"
)

// ClassResult is the match outcome for one class of one image.
type ClassResult struct {
	Class  overlay.Class
	Result MatchResult
}

func (c ClassResult) PQ() float64 {
	return c.Result.PQ()
}

// EvaluateNary matches every class of classes between the ground truth and
// predicted n-ary masks. Classes are looked up by name, so the two masks may
// use different channel layouts (e.g., annotations carry an extra Ambiguous
// channel). Results follow classes.Sorted().
func (m Matcher) EvaluateNary(groundTruth, predicted overlay.Nary, classes overlay.ClassMap) ([]ClassResult, error) {
	out := make([]ClassResult, 0, len(classes))

	for _, class := range classes.Sorted() {
		gt, err := groundTruth.Channel(class.Name)
		if err != nil {
			return nil, fmt.Errorf("ground truth: %v: %w", err, ErrMissingChannel)
		}
		pred, err := predicted.Channel(class.Name)
		if err != nil {
			return nil, fmt.Errorf("prediction: %v: %w", err, ErrMissingChannel)
		}

		res, err := m.Match(gt, pred)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class.Name, err)
		}

		out = append(out, ClassResult{Class: class, Result: res})
	}

	return out, nil
}
