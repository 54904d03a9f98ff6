package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/nucleipq/overlay"
	"github.com/carbocation/nucleipq/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtures writes a ground truth mask with one 2x2 epithelial nucleus,
// a prediction image drawing the same nucleus in red, and a manifest
// pointing at both.
func writeFixtures(t *testing.T) (manifest string) {
	t.Helper()
	dir := t.TempDir()

	gt, err := overlay.NewNary(overlay.DefaultClasses(), 4, 4)
	require.Nil(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{A: 0xff})
		}
	}
	for y := 1; y < 3; y++ {
		for x := 1; x < 3; x++ {
			gt.Channels[0].Set(x, y, 7)
			img.Set(x, y, color.NRGBA{R: 0xff, A: 0xff})
		}
	}

	gtPath := filepath.Join(dir, "gt.nary.json")
	f, err := os.Create(gtPath)
	require.Nil(t, err)
	require.Nil(t, gt.WriteJSON(f))
	f.Close()

	predPath := filepath.Join(dir, "pred.png")
	f, err = os.Create(predPath)
	require.Nil(t, err)
	require.Nil(t, png.Encode(f, img))
	f.Close()

	manifest = filepath.Join(dir, "manifest.tsv")
	contents := fmt.Sprintf("image\tground_truth\tprediction\nimg1\t%s\t%s\n", gtPath, predPath)
	require.Nil(t, os.WriteFile(manifest, []byte(contents), 0644))

	return manifest
}

func TestReadManifest(t *testing.T) {
	entries, err := readManifest(writeFixtures(t))
	require.Nil(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "img1", entries[0].Image)
	assert.False(t, needsStorage(entries))
}

func TestReadManifestMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.tsv")
	require.Nil(t, os.WriteFile(path, []byte("image\tground_truth\nimg1\tgt.nary.json\n"), 0644))

	_, err := readManifest(path)
	assert.Error(t, err)
}

func TestScoreOneImage(t *testing.T) {
	entries, err := readManifest(writeFixtures(t))
	require.Nil(t, err)

	s := &scorer{
		config:   overlay.DefaultJSONConfig(),
		matcher:  pq.NewMatcher(0.5, pq.LastWrite),
		strategy: pq.MacroAverage,
	}

	gt, err := overlay.OpenNaryFromLocalFileOrGoogleStorage(entries[0].GroundTruth, nil)
	require.Nil(t, err)
	pred, err := s.loadPrediction(entries[0].Prediction)
	require.Nil(t, err)

	results, err := s.matcher.EvaluateNary(gt, pred, s.config.Classes)
	require.Nil(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, overlay.ClassEpithelial, results[0].Class.Name)
	assert.Equal(t, 1, results[0].Result.TP)
	assert.Equal(t, 1.0, results[0].PQ())
	assert.Equal(t, 0.25, s.strategy(results))

	assert.Nil(t, s.processOneImage(entries[0]))
}

func TestScoreOneImageMissingPrediction(t *testing.T) {
	entries, err := readManifest(writeFixtures(t))
	require.Nil(t, err)

	s := &scorer{config: overlay.DefaultJSONConfig(), strategy: pq.MacroAverage}
	entry := *entries[0]
	entry.Prediction = filepath.Join(t.TempDir(), "missing.png")

	assert.Error(t, s.processOneImage(&entry))
}

func TestNeedsStorage(t *testing.T) {
	entries := []*manifestEntry{{Image: "a", GroundTruth: "gt.nary.json", Prediction: "gs://bucket/pred.png"}}
	assert.True(t, needsStorage(entries))
}

func TestRunReportsFailedImages(t *testing.T) {
	manifest := writeFixtures(t)
	entries, err := readManifest(manifest)
	require.Nil(t, err)

	s := &scorer{
		config:   overlay.DefaultJSONConfig(),
		matcher:  pq.NewMatcher(0.5, pq.LastWrite),
		strategy: pq.MacroAverage,
	}
	require.Nil(t, s.run(manifest, false))

	// One good row and one whose prediction is missing
	broken := filepath.Join(t.TempDir(), "manifest.tsv")
	contents := fmt.Sprintf("image\tground_truth\tprediction\nimg1\t%s\t%s\nimg2\t%s\t%s\n",
		entries[0].GroundTruth, entries[0].Prediction,
		entries[0].GroundTruth, filepath.Join(t.TempDir(), "missing.png"))
	require.Nil(t, os.WriteFile(broken, []byte(contents), 0644))

	err = s.run(broken, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}
