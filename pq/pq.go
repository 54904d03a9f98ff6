package pq

import "gonum.org/v1/gonum/floats"

// ComputePQ returns the panoptic quality of one class of one image: the sum
// of matched IoUs over TP + FP/2 + FN/2. An image with no objects on either
// side scores 0.
func ComputePQ(ious []float64, tp, fp, fn int) float64 {
	if tp+fp+fn == 0 {
		return 0
	}

	return floats.Sum(ious) / (float64(tp) + 0.5*float64(fp) + 0.5*float64(fn))
}

// PQ is ComputePQ over the result's own counts.
func (r MatchResult) PQ() float64 {
	return ComputePQ(r.IoUs, r.TP, r.FP, r.FN)
}

// SQ is the segmentation quality: the mean IoU of the matched pairs.
func (r MatchResult) SQ() float64 {
	if r.TP == 0 {
		return 0
	}

	return floats.Sum(r.IoUs) / float64(r.TP)
}

// RQ is the recognition quality, an F1 score over objects. PQ == SQ * RQ.
func (r MatchResult) RQ() float64 {
	denom := float64(r.TP) + 0.5*float64(r.FP) + 0.5*float64(r.FN)
	if denom == 0 {
		return 0
	}

	return float64(r.TP) / denom
}
