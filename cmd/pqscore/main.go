// pqscore computes the per-class panoptic quality of predicted nuclei
// against ground truth n-ary masks, for every image of a manifest.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/nucleipq"
	_ "github.com/carbocation/nucleipq/compileinfoprint"
	"github.com/carbocation/nucleipq/overlay"
	"github.com/carbocation/nucleipq/pq"
	"google.golang.org/api/option"
)

func init() {
	flag.Usage = func() {
		flag.PrintDefaults()

		log.Println("Example JSONConfig file layout:")
		bts, err := json.MarshalIndent(overlay.DefaultJSONConfig(), "", "  ")
		if err == nil {
			log.Println(string(bts))
		}
	}
}

// Safe for concurrent use by multiple goroutines
var client *storage.Client

type scorer struct {
	config   overlay.JSONConfig
	matcher  pq.Matcher
	strategy pq.ImageStrategy

	mu sync.Mutex
}

func main() {
	var jsonConfig, manifest, policy, strategy string
	var threshold float64
	var dilation int
	var anonymous bool

	flag.StringVar(&manifest, "manifest", "", "Tab-delimited file with columns image, ground_truth (.nary.json) and prediction (.nary.json or color-coded image). Paths may be local or gs://. Defaults to the config's manifest.")
	flag.StringVar(&jsonConfig, "config", "", "(Optional) JSONConfig file. Defaults to the four challenge classes.")
	flag.StringVar(&policy, "policy", "", "(Optional) Overrides the config's match policy: last-write or best-iou.")
	flag.Float64Var(&threshold, "threshold", 0, "(Optional) Overrides the config's IoU threshold. Pairs must exceed it strictly.")
	flag.IntVar(&dilation, "dilate", -1, "(Optional) Overrides the config's dilation radius for color-coded predictions.")
	flag.StringVar(&strategy, "strategy", "macro", "How class PQs are combined into the per-image value: macro or micro.")
	flag.BoolVar(&anonymous, "anonymous", false, "(Optional) Access gs:// paths without credentials (public buckets).")
	flag.Parse()

	config := overlay.DefaultJSONConfig()
	if jsonConfig != "" {
		var err error
		config, err = overlay.ParseJSONConfigFromPath(jsonConfig)
		if err != nil {
			log.Println(err)
			flag.Usage()
			os.Exit(1)
		}
	}
	if manifest == "" {
		manifest = config.ManifestPath
	}
	if manifest == "" {
		flag.Usage()
		os.Exit(1)
	}
	if policy != "" {
		config.MatchPolicy = policy
	}
	if threshold > 0 {
		config.IoUThreshold = threshold
	}
	if dilation >= 0 {
		config.DilationRadius = dilation
	}

	matchPolicy, err := pq.ParsePolicy(config.MatchPolicy)
	if err != nil {
		log.Fatalln(err)
	}
	imageStrategy, err := pq.StrategyByName(strategy)
	if err != nil {
		log.Fatalln(err)
	}

	s := &scorer{
		config:   config,
		matcher:  pq.NewMatcher(config.IoUThreshold, matchPolicy),
		strategy: imageStrategy,
	}

	if err := s.run(manifest, anonymous); err != nil {
		log.Fatalln(err)
	}
}

func (s *scorer) run(manifest string, anonymous bool) error {
	start := time.Now()

	entries, err := readManifest(manifest)
	if err != nil {
		return err
	}

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	if needsStorage(entries) {
		var opts []option.ClientOption
		if anonymous {
			opts = append(opts, option.WithoutAuthentication())
		}
		client, err = storage.NewClient(context.Background(), opts...)
		if err != nil {
			return err
		}
		defer client.Close()
	}

	log.Printf("Scoring %d images with %s matching at IoU > %g\n", len(entries), s.matcher.Policy, s.config.IoUThreshold)

	fmt.Println(strings.Join([]string{"image", "class", "TP", "FP", "FN", "SQ", "RQ", "PQ"}, "\t"))

	concurrency := 4 * runtime.NumCPU()
	sem := make(chan bool, concurrency)

	// Process every image in the manifest. A failing image is reported and
	// skipped; the rest of the batch continues.
	failures := 0
	var failMu sync.Mutex
	for i, entry := range entries {
		sem <- true
		go func(entry *manifestEntry) {
			defer func() { <-sem }()

			// The main purpose of this loop is to handle a specific filesystem
			// error (input/output error) that largely happens with GCSFuse, and
			// retry a few times before giving up.
			for loadAttempts, maxLoadAttempts := 1, 10; loadAttempts <= maxLoadAttempts; loadAttempts++ {
				err := s.processOneImage(entry)
				if err != nil && loadAttempts < maxLoadAttempts && strings.Contains(err.Error(), "input/output error") {
					log.Println("Sleeping 5s to recover from", err.Error(), ". Attempt #", loadAttempts)
					time.Sleep(5 * time.Second)
					continue
				} else if err != nil {
					log.Printf("%s: %s\n", entry.Image, err)
					failMu.Lock()
					failures++
					failMu.Unlock()
				}

				break
			}
		}(entry)

		if (i+1)%1000 == 0 {
			log.Printf("Processed %d images\n", i+1)
		}
	}

	for i := 0; i < cap(sem); i++ {
		sem <- true
	}

	log.Printf("Scored %d images (%d failed) in %.2f seconds\n", len(entries)-failures, failures, time.Since(start).Seconds())

	if failures > 0 {
		return fmt.Errorf("%d of %d images could not be scored", failures, len(entries))
	}

	return nil
}

func (s *scorer) processOneImage(entry *manifestEntry) error {
	gt, err := overlay.OpenNaryFromLocalFileOrGoogleStorage(entry.GroundTruth, client)
	if err != nil {
		return err
	}

	pred, err := s.loadPrediction(entry.Prediction)
	if err != nil {
		return err
	}

	results, err := s.matcher.EvaluateNary(gt, pred, s.config.Classes)
	if err != nil {
		return err
	}

	// Print the whole image at once so rows of different images never
	// interleave.
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		fmt.Printf("%s\t%s\t%d\t%d\t%d\t%g\t%g\t%g\n", entry.Image, r.Class.Name, r.Result.TP, r.Result.FP, r.Result.FN, r.Result.SQ(), r.Result.RQ(), r.PQ())
	}
	fmt.Printf("%s\t%s\t\t\t\t\t\t%g\n", entry.Image, "ALL", s.strategy(results))

	return nil
}

// loadPrediction reads a stored n-ary mask, or builds one from a color-coded
// image (dilating it to make up for the removed borders).
func (s *scorer) loadPrediction(path string) (overlay.Nary, error) {
	if strings.HasSuffix(path, ".json") {
		return overlay.OpenNaryFromLocalFileOrGoogleStorage(path, client)
	}

	img, err := overlay.OpenImageFromLocalFileOrGoogleStorage(path, client)
	if err != nil {
		return overlay.Nary{}, err
	}

	nary, err := overlay.NaryFromColorCoded(img, s.config.Classes)
	if err != nil {
		return overlay.Nary{}, fmt.Errorf("%s: %w", path, err)
	}

	return nary.Dilate(s.config.DilationRadius), nil
}

func needsStorage(entries []*manifestEntry) bool {
	for _, e := range entries {
		if nucleipq.IsGoogleStoragePath(e.GroundTruth) || nucleipq.IsGoogleStoragePath(e.Prediction) {
			return true
		}
	}

	return false
}
