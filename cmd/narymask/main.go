// narymask turns a color-coded prediction image into a .nary.json mask: one
// instance map per class, built from the 8-connected components of each
// class color and optionally dilated to recover the removed borders.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/nucleipq"
	_ "github.com/carbocation/nucleipq/compileinfoprint"
	"github.com/carbocation/nucleipq/overlay"
	"github.com/carbocation/pfx"
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

func main() {
	start := time.Now()
	log.Println("narymask start")
	defer func() {
		log.Printf("narymask end. Took %.2f seconds\n", time.Since(start).Seconds())
	}()

	var input, output, jsonConfig string
	var dilation int
	var colors bool

	flag.StringVar(&input, "input", "", "Color-coded prediction image (png, jpeg, gif, bmp or tiff). Local path or gs://")
	flag.StringVar(&output, "output", "", "Where to write the .nary.json mask. Defaults to the input path with .nary.json appended.")
	flag.StringVar(&jsonConfig, "config", "", "(Optional) JSONConfig file. Defaults to the four challenge classes.")
	flag.IntVar(&dilation, "dilate", -1, "(Optional) Overrides the config's dilation radius.")
	flag.BoolVar(&colors, "colors", false, "(Optional) Also print a tab-delimited tally of every color in the input.")
	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(1)
	}
	if output == "" {
		output = input + ".nary.json"
	}

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
	if dilation >= 0 {
		config.DilationRadius = dilation
	}

	var client *storage.Client
	if nucleipq.IsGoogleStoragePath(input) {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	if colors {
		if err := printColors(input, config, client); err != nil {
			log.Fatalln(err)
		}
	}

	if err := run(input, output, config, client); err != nil {
		log.Fatalln(err)
	}
}

func run(input, output string, config overlay.JSONConfig, client *storage.Client) error {
	img, err := overlay.OpenImageFromLocalFileOrGoogleStorage(input, client)
	if err != nil {
		return err
	}

	nary, err := overlay.NaryFromColorCoded(img, config.Classes)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	nary = nary.Dilate(config.DilationRadius)

	for _, class := range config.Classes.Sorted() {
		channel, err := nary.Channel(class.Name)
		if err != nil {
			return err
		}
		log.Printf("%s: %d objects\n", class.Name, len(channel.IDs()))
	}

	f, err := os.Create(output)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := nary.WriteJSON(f); err != nil {
		return pfx.Err(err)
	}

	return f.Close()
}

// printColors tallies the colors of the input, naming the class (or border)
// each one belongs to. Colors with no name are ignored when building masks.
func printColors(input string, config overlay.JSONConfig, client *storage.Client) error {
	img, err := overlay.OpenImageFromLocalFileOrGoogleStorage(input, client)
	if err != nil {
		return err
	}

	counts := overlay.CountColors(img)
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	names := map[string]string{config.BorderColor: "border"}
	for _, class := range config.Classes.Sorted() {
		names[class.Color] = class.Name
	}

	fmt.Println("color\tpixels\tclass")
	for _, code := range codes {
		fmt.Printf("%s\t%d\t%s\n", code, counts[code], names[code])
	}

	return nil
}
