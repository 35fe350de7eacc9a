package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/dataset"
	"github.com/pwnholic/mobilitywatch/internal/exports"
)

type Flag struct {
	Dataset    string
	Country    string
	Formats    []exports.Format
	Section    string
	OutputDir  string
	ConfigPath string
	Markup     string
	LogLevel   string
}

func parseFlag(args []string) (*Flag, error) {
	fs := pflag.NewFlagSet("mobilitywatch", pflag.ContinueOnError)
	fs.SortFlags = false

	datasetPath := fs.StringP("dataset", "d", "", `Dataset file (.yaml, .json, .jsonc) or http(s) URL`)
	country := fs.StringP("country", "c", "all", `Country code to export (e.g. "KEN"), or "all" for the IGAD region`)
	formats := fs.StringP("formats", "f", "csv,json,pdf", `Comma separated export formats: csv, json, png, svg, pdf`)
	section := fs.StringP("section", "s", dataset.SectionComplete,
		fmt.Sprintf(`Dashboard section: %s, or %q for the full dashboard`, strings.Join(dataset.SectionNames, ", "), dataset.SectionComplete))
	output := fs.StringP("output", "o", "", `Output directory (overrides config export.output_dir)`)
	configPath := fs.String("config", "", `YAML configuration file`)
	markup := fs.String("markup", "", `HTML/SVG page (file or URL) whose chart replaces the generated one`)
	logLevel := fs.StringP("log-level", "l", "", `Log level: debug, info, warn, error`)
	help := fs.BoolP("help", "h", false, "Display this help message and exit")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "EA Mobility Watch - export dashboard data, charts and reports")
		fmt.Fprintln(os.Stderr, "Usage: mobilitywatch -d <file|url> [-c KEN] [-f csv,json,pdf] [-s monthly-trend] [-o out/]")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nExamples:")
		fmt.Fprintln(os.Stderr, "  Full dashboard for Kenya:    -d igad.yaml -c KEN")
		fmt.Fprintln(os.Stderr, "  Monthly chart as PNG + SVG:  -d igad.yaml -s monthly-trend -f png,svg")
		fmt.Fprintln(os.Stderr, "  Remote dataset, PDF only:    -d https://example.org/igad.json -f pdf")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		fs.Usage()
		return nil, pflag.ErrHelp
	}

	if *datasetPath == "" {
		return nil, fmt.Errorf("dataset is required, use -d")
	}

	parsedFormats, err := exports.ParseFormats(*formats)
	if err != nil {
		return nil, err
	}

	if *section != dataset.SectionComplete && !slices.Contains(dataset.SectionNames, *section) {
		return nil, fmt.Errorf("unknown section %q", *section)
	}

	if *section == dataset.SectionComplete {
		for _, f := range parsedFormats {
			if f == exports.PNG || f == exports.SVG {
				internal.Warn("%s is not available for the complete export and will be skipped", f)
			}
		}
	}

	return &Flag{
		Dataset:    *datasetPath,
		Country:    *country,
		Formats:    parsedFormats,
		Section:    *section,
		OutputDir:  *output,
		ConfigPath: *configPath,
		Markup:     *markup,
		LogLevel:   *logLevel,
	}, nil
}
