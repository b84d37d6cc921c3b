// Package fraction estimates per-pixel glacier coverage fractions:
// a fine-resolution binary glacier mask is aggregated onto the MODIS
// grid by neighborhood mean, and each coarse pixel is classified into
// a coverage bin and an elevation zone.
package fraction

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Grid is a single-band raster in ESRI ASCII grid layout: row-major
// cells with the first row at the top, anchored at the lower-left
// corner.
type Grid struct {
	Cols, Rows int
	XLL, YLL   float64 // lower-left corner coordinates
	CellSize   float64
	NoData     float64
	Data       []float64
}

// NewGrid allocates a grid filled with the NoData value.
func NewGrid(cols, rows int, xll, yll, cellSize, noData float64) *Grid {
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		XLL:      xll,
		YLL:      yll,
		CellSize: cellSize,
		NoData:   noData,
		Data:     make([]float64, cols*rows),
	}
	for i := range g.Data {
		g.Data[i] = noData
	}
	return g
}

// At returns the value at row r (0 = top), column c.
func (g *Grid) At(r, c int) float64 { return g.Data[r*g.Cols+c] }

// Set stores a value at row r, column c.
func (g *Grid) Set(r, c int, v float64) { g.Data[r*g.Cols+c] = v }

// IsNoData reports whether a value is the grid's missing marker.
func (g *Grid) IsNoData(v float64) bool {
	return v == g.NoData || math.IsNaN(v)
}

// CellCenter returns the map coordinates of a cell's center.
func (g *Grid) CellCenter(r, c int) (x, y float64) {
	x = g.XLL + (float64(c)+0.5)*g.CellSize
	y = g.YLL + (float64(g.Rows-1-r)+0.5)*g.CellSize
	return x, y
}

// ReadASCIIGrid reads an ESRI ASCII grid file.
func ReadASCIIGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%s: unexpected end of file", path)
		}
		return sc.Text(), nil
	}

	g := &Grid{NoData: -9999}
	headerDone := false
	for !headerDone {
		key, err := next()
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(key) {
		case "ncols", "nrows":
			v, err := next()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s: bad %s %q", path, key, v)
			}
			if strings.ToLower(key) == "ncols" {
				g.Cols = n
			} else {
				g.Rows = n
			}
		case "xllcorner", "yllcorner", "cellsize", "nodata_value":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f64, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad %s %q", path, key, v)
			}
			switch strings.ToLower(key) {
			case "xllcorner":
				g.XLL = f64
			case "yllcorner":
				g.YLL = f64
			case "cellsize":
				g.CellSize = f64
			case "nodata_value":
				g.NoData = f64
			}
		default:
			// first data value ends the header
			if g.Cols == 0 || g.Rows == 0 {
				return nil, fmt.Errorf("%s: header missing ncols/nrows", path)
			}
			f64, err := strconv.ParseFloat(key, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad data value %q", path, key)
			}
			g.Data = append(make([]float64, 0, g.Cols*g.Rows), f64)
			headerDone = true
		}
	}

	for len(g.Data) < g.Cols*g.Rows {
		v, err := next()
		if err != nil {
			return nil, err
		}
		f64, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad data value %q", path, v)
		}
		g.Data = append(g.Data, f64)
	}
	return g, nil
}

// WriteASCIIGrid writes a grid in ESRI ASCII format.
func WriteASCIIGrid(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %g\n", g.XLL)
	fmt.Fprintf(w, "yllcorner %g\n", g.YLL)
	fmt.Fprintf(w, "cellsize %g\n", g.CellSize)
	fmt.Fprintf(w, "NODATA_value %g\n", g.NoData)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%g", g.At(r, c))
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}
