package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// manifestEntry is one image to score. GroundTruth is a .nary.json mask;
// Prediction is either a .nary.json mask or a color-coded image.
type manifestEntry struct {
	Image       string `csv:"image"`
	GroundTruth string `csv:"ground_truth"`
	Prediction  string `csv:"prediction"`
}

func readManifest(path string) ([]*manifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = '\t'
		r.Comment = '#'
		return r
	})

	entries := []*manifestEntry{}
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	for i, e := range entries {
		if e.Image == "" || e.GroundTruth == "" || e.Prediction == "" {
			return nil, fmt.Errorf("%s: row %d is missing a column (need image, ground_truth and prediction)", path, i+2)
		}
	}

	return entries, nil
}
