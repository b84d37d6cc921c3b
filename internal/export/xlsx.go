package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

// WriteTrendXLSX writes a trend workbook with one sheet per product.
// Records keep their input order within a sheet.
func WriteTrendXLSX(path string, records []TrendRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := make(map[types.Product]int) // product -> next row
	order := []types.Product{}

	for _, r := range records {
		if _, ok := sheets[r.Product]; !ok {
			name := string(r.Product)
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
			if err := writeHeaderRow(f, name); err != nil {
				return err
			}
			sheets[r.Product] = 2
			order = append(order, r.Product)
		}
	}

	for _, r := range records {
		name := string(r.Product)
		row := sheets[r.Product]
		if err := writeTrendRow(f, name, row, r); err != nil {
			return err
		}
		sheets[r.Product] = row + 1
	}

	// Drop the default sheet so the workbook opens on the first
	// product.
	if len(order) > 0 {
		f.DeleteSheet("Sheet1")
		idx, err := f.GetSheetIndex(string(order[0]))
		if err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	return f.SaveAs(path)
}

func writeHeaderRow(f *excelize.File, sheet string) error {
	for i, col := range TrendColumns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	return nil
}

func writeTrendRow(f *excelize.File, sheet string, row int, r TrendRecord) error {
	values := []interface{}{
		r.Dataset,
		string(r.Product),
		string(r.Zone),
		string(r.Class),
		r.Period,
		r.Result.N,
		string(r.Result.Trend),
		cellFloat(r.Result.P),
		cellFloat(r.Result.Z),
		cellFloat(r.Result.Tau),
		cellFloat(r.Result.S),
		cellFloat(r.Result.Slope),
		cellFloat(r.Result.SlopeLow),
		cellFloat(r.Result.SlopeHigh),
		cellFloat(r.Result.Intercept),
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
		}
	}
	return nil
}

// cellFloat maps NaN to an empty cell; Excel has no NaN literal.
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
