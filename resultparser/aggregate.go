package resultparser

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// OrganResults is organ => class name => patient sub-ID => scores.
type OrganResults map[string]map[string]map[string][]float64

// GroupByOrganAndClass buckets every score by the organ of its patient, its
// class, and the part of its image identifier before the first underscore.
// Every organ and class of the registry is present in the output, even
// without scores.
func GroupByOrganAndClass(t *ScoreTable, registry Registry) (OrganResults, error) {
	out := make(OrganResults)
	for _, organ := range registry.Organs {
		out[organ] = make(map[string]map[string][]float64)
		for _, class := range registry.Classes {
			out[organ][class] = make(map[string][]float64)
		}
	}

	for _, patient := range t.Patients() {
		organ, err := registry.OrganFor(patient)
		if err != nil {
			return nil, err
		}
		if _, exists := out[organ]; !exists {
			out[organ] = make(map[string]map[string][]float64)
		}

		for _, rec := range t.Records(patient) {
			class, err := registry.ClassName(rec.Class)
			if err != nil {
				return nil, err
			}
			if _, exists := out[organ][class]; !exists {
				out[organ][class] = make(map[string][]float64)
			}

			subID := strings.SplitN(rec.Image, "_", 2)[0]
			out[organ][class][subID] = append(out[organ][class][subID], rec.Score)
		}
	}

	return out, nil
}

// A ScoreStrategy combines the class scores of one image into one value.
type ScoreStrategy func(classScores []float64) (float64, error)

// MeanScores is the macro-average over classes.
func MeanScores(classScores []float64) (float64, error) {
	return stats.Mean(classScores)
}

// MedianScores is the median over classes.
func MedianScores(classScores []float64) (float64, error) {
	return stats.Median(classScores)
}

// ScoreStrategyByName returns "mean" (the default when name is empty) or
// "median".
func ScoreStrategyByName(name string) (ScoreStrategy, error) {
	switch name {
	case "", "mean":
		return MeanScores, nil
	case "median":
		return MedianScores, nil
	}

	return nil, fmt.Errorf("Unknown score strategy %q (expected mean or median)", name)
}

// GlobalResults holds the per-image and per-patient strategies: a PQ for each
// image (resp. patient), and their averages over the whole set.
type GlobalResults struct {
	PerImagePQ    []float64 `json:"per-image-pq"`
	PerPatientPQ  []float64 `json:"per-patient-pq"`
	PerImageAvg   float64   `json:"per-image-avg"`
	PerPatientAvg float64   `json:"per-patient-avg"`
}

// ComputeGlobal combines each image's class scores with strategy (MeanScores
// if nil), then averages images within each patient. Images and patients are
// listed in order of first appearance. Averages of empty lists are 0.
func ComputeGlobal(t *ScoreTable, strategy ScoreStrategy) (GlobalResults, error) {
	if strategy == nil {
		strategy = MeanScores
	}

	out := GlobalResults{
		PerImagePQ:   []float64{},
		PerPatientPQ: []float64{},
	}

	for _, patient := range t.Patients() {
		var images []string
		classScores := make(map[string][]float64)
		for _, rec := range t.Records(patient) {
			if _, exists := classScores[rec.Image]; !exists {
				images = append(images, rec.Image)
			}
			classScores[rec.Image] = append(classScores[rec.Image], rec.Score)
		}

		patientImages := make([]float64, 0, len(images))
		for _, image := range images {
			v, err := strategy(classScores[image])
			if err != nil {
				return out, err
			}
			patientImages = append(patientImages, v)
		}
		out.PerImagePQ = append(out.PerImagePQ, patientImages...)

		patientPQ, err := stats.Mean(patientImages)
		if err != nil {
			return out, err
		}
		out.PerPatientPQ = append(out.PerPatientPQ, patientPQ)
	}

	out.PerImageAvg = meanOrZero(out.PerImagePQ)
	out.PerPatientAvg = meanOrZero(out.PerPatientPQ)

	return out, nil
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m, _ := stats.Mean(values)
	return m
}
