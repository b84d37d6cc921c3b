// Command fraction-map builds the glacier-coverage classification
// offline: it aggregates a fine-resolution binary glacier mask onto
// the MODIS grid, classifies each pixel into a coverage bin, and
// optionally derives median-relative elevation zones from a DEM.
// Grids are exchanged as ESRI ASCII rasters.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/fraction"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

func main() {
	var (
		maskPath    = flag.String("mask", "", "Binary glacier mask grid (required)")
		demPath     = flag.String("dem", "", "Elevation grid at mask resolution (enables zone output)")
		cellSize    = flag.Float64("cellsize", fraction.MODISCellSize, "Target (MODIS) cell size in mask units")
		coverageOut = flag.String("out-coverage", "", "Coverage-fraction grid output path")
		classesOut  = flag.String("out-classes", "", "Coverage-class grid output path")
		zonesOut    = flag.String("out-zones", "", "Elevation-zone grid output path (requires -dem)")
	)
	flag.Parse()

	if *maskPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -mask is required")
		os.Exit(1)
	}
	if *zonesOut != "" && *demPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -out-zones requires -dem")
		os.Exit(1)
	}

	mask, err := fraction.ReadASCIIGrid(*maskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading mask: %v\n", err)
		os.Exit(1)
	}

	coverage, err := fraction.CoverageMap(mask, *cellSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing coverage: %v\n", err)
		os.Exit(1)
	}
	classes, counts := fraction.Classify(coverage)

	fmt.Printf("Glacier Coverage Classification\n")
	fmt.Printf("===============================\n\n")
	fmt.Printf("Mask: %dx%d cells at %g\n", mask.Cols, mask.Rows, mask.CellSize)
	fmt.Printf("Target grid: %dx%d cells at %g\n\n", coverage.Cols, coverage.Rows, coverage.CellSize)

	fmt.Printf("%-12s | %s\n", "Class", "Pixels")
	fmt.Printf("-------------+--------\n")
	total := 0
	for _, c := range types.FractionClasses() {
		fmt.Printf("%-12s | %6d\n", c, counts[c])
		total += counts[c]
	}
	fmt.Printf("%-12s | %6d\n", "total", total)

	if *coverageOut != "" {
		if err := fraction.WriteASCIIGrid(*coverageOut, coverage); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing coverage grid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nCoverage grid written to: %s\n", *coverageOut)
	}
	if *classesOut != "" {
		if err := fraction.WriteASCIIGrid(*classesOut, classes); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing class grid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Class grid written to: %s\n", *classesOut)
	}

	if *demPath == "" {
		return
	}

	dem, err := fraction.ReadASCIIGrid(*demPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading DEM: %v\n", err)
		os.Exit(1)
	}
	median, err := fraction.GlacierMedianElevation(dem, mask)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing median elevation: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nGlacier median elevation: %.1f m (zone band ±%g m)\n",
		median, types.ElevationBandHalfWidth)

	if *zonesOut != "" {
		demCoarse, err := fraction.Aggregate(dem, *cellSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error aggregating DEM: %v\n", err)
			os.Exit(1)
		}
		zones := fraction.ZoneMap(demCoarse, median)
		if err := fraction.WriteASCIIGrid(*zonesOut, zones); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing zone grid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Zone grid written to: %s\n", *zonesOut)
	}
}
