package gee

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// ReaderOptions control parsing and gating of an export file.
type ReaderOptions struct {
	Product types.Product
	Zone    types.ElevationZone

	// MinPixelCount gates each class observation: below it, the
	// albedo statistics are dropped to NaN. Zero disables the gate.
	MinPixelCount int
}

// ReadFile reads a GEE export CSV into daily observations, sorted by
// date.
func ReadFile(path string, opts ReaderOptions) ([]types.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obs, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// Read parses observations from CSV data. The header is validated
// against the per-class schema; column order does not matter and
// unknown columns are ignored.
func Read(r io.Reader, opts ReaderOptions) ([]types.Observation, error) {
	if opts.Zone == "" {
		opts.Zone = types.ZoneAll
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows handled per-cell

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h, err := parseHeader(first)
	if err != nil {
		return nil, err
	}

	var obs []types.Observation
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		o, err := parseRow(h, record, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obs = append(obs, o)
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

func parseRow(h header, record []string, opts ReaderOptions) (types.Observation, error) {
	date, err := parseDate(h.field(record, colDate))
	if err != nil {
		return types.Observation{}, err
	}

	o := types.NewObservation(date, opts.Product, opts.Zone)

	// Exports that carry the derived date fields win over our own
	// derivation, so round-trips preserve the file's values.
	if v := h.field(record, colYear); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			o.Year = y
		}
	}
	if v := h.field(record, colDOY); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			o.DOY = d
		}
	}
	if v := h.field(record, colDecimalYear); v != "" {
		if dy := parseFloat(v); !math.IsNaN(dy) {
			o.DecimalYear = dy
		}
	}
	if v := h.field(record, colSeason); v != "" {
		o.Season = types.Season(v)
	}

	for _, c := range types.FractionClasses() {
		cols := ColumnsForClass(c)
		s := types.ClassStats{
			Mean:        parseFloat(h.field(record, cols[0])),
			Median:      parseFloat(h.field(record, cols[1])),
			DataQuality: parseFloat(h.field(record, cols[3])),
		}
		if v := h.field(record, cols[2]); v != "" {
			// pixel counts arrive as "12" or "12.0" depending on the
			// export path
			if f := parseFloat(v); !math.IsNaN(f) {
				s.PixelCount = int(f)
			}
		}
		if opts.MinPixelCount > 0 && s.PixelCount < opts.MinPixelCount {
			s.Mean = math.NaN()
			s.Median = math.NaN()
		}
		o.Classes[c] = s
	}
	return o, nil
}

// parseDate accepts the two date spellings that appear in exports.
func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02", "2006_01_02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// parseFloat maps empty cells and NaN spellings to NaN, never to zero.
func parseFloat(v string) float64 {
	if v == "" {
		return math.NaN()
	}
	switch strings.ToLower(v) {
	case "nan", "na", "null", "none":
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
