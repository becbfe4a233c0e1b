package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/locate"
	"github.com/woozymasta/sharebite/internal/logger"
	"github.com/woozymasta/sharebite/internal/render"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Input      string  `short:"i" long:"in"     description:"Donations JSON as returned by GET /donations. Fetches from the API if empty, '-' reads stdin"`
	Output     string  `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format     string  `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Lat        float64 `long:"lat"              description:"Receiver latitude"  required:"true"`
	Lon        float64 `long:"lon"              description:"Receiver longitude" required:"true"`
}

// fileFetcher serves a saved donation list instead of calling the API.
type fileFetcher struct {
	r io.Reader
}

func (f fileFetcher) ListDonations(context.Context) ([]donation.Record, error) {
	var records []donation.Record
	if err := json.NewDecoder(f.r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode donations: %w", err)
	}

	open := records[:0]
	for _, r := range records {
		if !r.Claimed {
			open = append(open, r)
		}
	}
	return open, nil
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile, !parser.FindOptionByLongName("config").IsSet())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var fetcher view.Fetcher
	switch opts.Input {
	case "":
		fetcher = api.NewClient(cfg.API, nil)
	case "-":
		fetcher = fileFetcher{r: os.Stdin}
	default:
		f, err := os.Open(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		fetcher = fileFetcher{r: f}
	}

	mapView := render.NewGeoJSONMap(cfg.Map)
	notify := view.NotifierFunc(func(msg string) { fmt.Fprintln(os.Stderr, msg) })
	session := view.NewSession(fetcher, render.NewTextList(), mapView, notify, cfg.Map.Zoom)

	position := &geo.Coordinate{Latitude: opts.Lat, Longitude: opts.Lon}
	if err := session.Start(context.Background(), locate.Static{Position: position}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	doc := mapView.Document()
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(doc)
	} else {
		outputData, err = json.MarshalIndent(doc, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	count := len(session.Snapshot().Records)
	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully exported %d donations to %s (format: %s)\n", count, opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
