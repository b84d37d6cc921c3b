// Command albedo-analyze runs the full albedo analysis pipeline from
// a YAML configuration: ingest the configured GEE exports, apply the
// quality gates, compute the trend statistics and write the
// CSV/XLSX/PNG outputs and storage mirrors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/config"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/constants"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/log"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/pipeline"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the analysis configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("albedo-analyze %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.Load(filename)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, log.GetSugaredLogger())
	if err := p.Run(context.Background()); err != nil {
		log.Errorf("Analysis error: %v", err)
		os.Exit(1)
	}
	log.Infof("analysis complete, outputs in %s", cfg.Outputs.Dir)
}
