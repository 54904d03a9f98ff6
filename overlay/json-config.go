package overlay

import (
	"encoding/json"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// Default values applied by ParseJSONConfigFromPath when a field is omitted.
const (
	DefaultIoUThreshold   = 0.5
	DefaultMatchPolicy    = "last-write"
	DefaultDilationRadius = 0
)

type JSONConfig struct {
	ConfigPath     string
	ManifestPath   string   `json:"manifest"`
	Classes        ClassMap `json:"classes"`
	BorderColor    string   `json:"border_color"`
	DilationRadius int      `json:"dilation_radius"`
	IoUThreshold   float64  `json:"iou_threshold"`
	MatchPolicy    string   `json:"match_policy"`
}

// DefaultJSONConfig describes the challenge setup: four scored classes,
// strict IoU > 0.5 with last-write matching, and no dilation.
func DefaultJSONConfig() JSONConfig {
	return JSONConfig{
		Classes:        DefaultClasses(),
		BorderColor:    BorderColor,
		DilationRadius: DefaultDilationRadius,
		IoUThreshold:   DefaultIoUThreshold,
		MatchPolicy:    DefaultMatchPolicy,
	}
}

func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := JSONConfig{ConfigPath: path}

	f, err := os.Open(expandHomeDir(path))
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(&out)
	if err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}

		return out, pfx.Err(err)
	}

	defaults := DefaultJSONConfig()
	if len(out.Classes) == 0 {
		out.Classes = defaults.Classes
	}
	if out.BorderColor == "" {
		out.BorderColor = defaults.BorderColor
	}
	if out.IoUThreshold == 0 {
		out.IoUThreshold = defaults.IoUThreshold
	}
	if out.MatchPolicy == "" {
		out.MatchPolicy = defaults.MatchPolicy
	}

	// Internally, go uses lower case for all colors, so we will too (while
	// permitting the user to use mixed case)
	for k, v := range out.Classes {
		v.Color = strings.ToLower(v.Color)
		out.Classes[k] = v
	}
	out.BorderColor = strings.ToLower(out.BorderColor)

	// Interpret ~ if present
	out.ConfigPath = expandHomeDir(out.ConfigPath)
	out.ManifestPath = expandHomeDir(out.ManifestPath)

	return out, nil
}

// Via https://stackoverflow.com/a/17617721/199475
func expandHomeDir(path string) string {

	usr, err := user.Current()
	if err != nil {
		return path
	}

	dir := usr.HomeDir

	if path == "~" {
		// In case of "~", which won't be caught by the "else if"
		path = dir
	} else if strings.HasPrefix(path, "~/") {
		// Use strings.HasPrefix so we don't match paths like
		// "/something/~/something/"
		path = filepath.Join(dir, path[2:])
	}

	return path
}
