// pqresults parses a challenge result dump (team name, then alternating
// image path and PQ score lines) and prints the scores grouped by organ and
// class, along with the per-image and per-patient global results, as JSON.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/carbocation/pfx"
	_ "github.com/carbocation/nucleipq/compileinfoprint"
	"github.com/carbocation/nucleipq/resultparser"
)

func init() {
	flag.Usage = func() {
		flag.PrintDefaults()

		log.Println("Example registry file layout:")
		bts, err := json.MarshalIndent(resultparser.DefaultRegistry(), "", "  ")
		if err == nil {
			log.Println(string(bts))
		}
	}
}

// Summary is the printed output.
type Summary struct {
	Team    string                     `json:"team"`
	Scores  int                        `json:"scores"`
	ByOrgan resultparser.OrganResults  `json:"by-organ"`
	Global  resultparser.GlobalResults `json:"global"`
}

func main() {
	var input, registryPath, strategy string

	flag.StringVar(&input, "input", "", "The result dump. Use - for stdin.")
	flag.StringVar(&registryPath, "registry", "", "(Optional) JSON registry of classes, organs and patients. Defaults to the challenge test set.")
	flag.StringVar(&strategy, "strategy", "mean", "How the class scores of an image are combined: mean or median.")
	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(1)
	}

	registry := resultparser.DefaultRegistry()
	if registryPath != "" {
		var err error
		registry, err = resultparser.ParseRegistryFromPath(registryPath)
		if err != nil {
			log.Fatalln(err)
		}
	}

	scoreStrategy, err := resultparser.ScoreStrategyByName(strategy)
	if err != nil {
		log.Fatalln(err)
	}

	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		defer f.Close()
		r = f
	}

	summary, err := summarize(r, registry, scoreStrategy)
	if err != nil {
		log.Fatalln(err)
	}

	bts, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalln(err)
	}
	os.Stdout.Write(append(bts, '\n'))
}

func summarize(r io.Reader, registry resultparser.Registry, strategy resultparser.ScoreStrategy) (Summary, error) {
	p, err := resultparser.ParseReader(r, registry)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Team:   p.Team(),
		Scores: p.Scores().Len(),
	}

	out.ByOrgan, err = resultparser.GroupByOrganAndClass(p.Scores(), p.Registry())
	if err != nil {
		return out, err
	}

	out.Global, err = resultparser.ComputeGlobal(p.Scores(), strategy)
	if err != nil {
		return out, err
	}

	log.Printf("Parsed %d scores for team %q across %d patients\n", out.Scores, out.Team, len(p.Scores().Patients()))

	return out, nil
}
