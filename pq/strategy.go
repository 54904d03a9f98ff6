package pq

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// An ImageStrategy collapses the per-class results of one image into a
// single score.
type ImageStrategy func([]ClassResult) float64

// MacroAverage is the mean of the per-class PQ values. Classes without any
// object on either side count as 0.
func MacroAverage(results []ClassResult) float64 {
	pqs := make([]float64, 0, len(results))
	for _, r := range results {
		pqs = append(pqs, r.PQ())
	}

	// stats.Mean only fails on empty input
	mean, err := stats.Mean(pqs)
	if err != nil {
		return 0
	}

	return mean
}

// MicroAverage pools matches and counts over all classes before computing a
// single PQ.
func MicroAverage(results []ClassResult) float64 {
	var pooled MatchResult
	for _, r := range results {
		pooled.IoUs = append(pooled.IoUs, r.Result.IoUs...)
		pooled.TP += r.Result.TP
		pooled.FP += r.Result.FP
		pooled.FN += r.Result.FN
	}

	return pooled.PQ()
}

// StrategyByName returns "macro" or "micro".
func StrategyByName(name string) (ImageStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "macro":
		return MacroAverage, nil
	case "micro":
		return MicroAverage, nil
	}

	return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
}
