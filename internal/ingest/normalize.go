// Package ingest parses the raw inventory CSV into typed plot records.
//
// Coercion policy (the only fatal path is a missing required column):
//
//	Plot_Number  -> string           never fails
//	Plot_Size    -> *float64         nil on failure
//	Sold_Amount  -> decimal          0 on failure (deliberate zero-fill)
//	Sold_Date    -> *time.Time       nil on failure, format DD/MM/YY
//	X/Y          -> *float64         nil on failure
//
// No row is ever dropped: row count out equals row count in.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/plotsight/api/internal/models"
)

// SoldDateLayout is the sheet's date format (DD/MM/YY).
const SoldDateLayout = "02/01/06"

// Column names recognized in the sheet header. Matching is case-sensitive.
const (
	ColPlotNumber = "Plot_Number"
	ColPlotSize   = "Plot_Size"
	ColSoldAmount = "Sold_Amount"
	ColOwnerName  = "Owner_Name"
	ColStatus     = "Status"
	ColSoldDate   = "Sold_Date"
	ColXPct       = "X_pct"
	ColYPct       = "Y_pct"
	ColXPixel     = "X_pixel"
	ColYPixel     = "Y_pixel"
)

// Columns names the pair of spatial columns a dataset uses. Percentage
// and pixel datasets carry different headers; the dataset config decides
// which pair is required, the parser never infers it.
type Columns struct {
	X string
	Y string
}

// PercentColumns selects the percentage-based spatial fields.
func PercentColumns() Columns { return Columns{X: ColXPct, Y: ColYPct} }

// PixelColumns selects the pixel-based spatial fields.
func PixelColumns() Columns { return Columns{X: ColXPixel, Y: ColYPixel} }

// SchemaError reports required columns missing from the sheet header.
// It is the only fatal error the normalizer produces; every field-level
// failure degrades to an absent (or zero-filled) value instead.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns in sheet: %s", strings.Join(e.Missing, ", "))
}

// Normalize reads the CSV stream and coerces every row into a PlotRecord.
// The first row must be a header containing all base columns plus the
// spatial pair named by cols. Returns a SchemaError when any required
// column is absent; otherwise every input row yields exactly one record.
func Normalize(r io.Reader, cols Columns) ([]models.PlotRecord, Quality, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, Quality{}, fmt.Errorf("failed to read sheet header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	required := []string{
		ColPlotNumber, ColPlotSize, ColSoldAmount,
		ColOwnerName, ColStatus, ColSoldDate,
		cols.X, cols.Y,
	}
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, Quality{}, &SchemaError{Missing: missing}
	}

	var (
		records []models.PlotRecord
		quality Quality
		seen    = make(map[string]bool)
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Quality{}, fmt.Errorf("failed to read sheet row: %w", err)
		}

		rec := normalizeRow(row, index, cols, &quality)

		if seen[rec.PlotNumber] {
			quality.DuplicatePlotNumbers++
		}
		seen[rec.PlotNumber] = true

		if rec.SoldDate != nil {
			quality.HasSoldDates = true
		}
		if rec.Sold() && rec.SoldDate == nil {
			quality.SoldMissingDate++
		}

		records = append(records, rec)
	}

	quality.Rows = len(records)
	return records, quality, nil
}

// normalizeRow coerces one CSV row. Field failures update the quality
// counters and degrade per the package coercion table.
func normalizeRow(row []string, index map[string]int, cols Columns, quality *Quality) models.PlotRecord {
	rec := models.PlotRecord{
		PlotNumber: cell(row, index[ColPlotNumber]),
		OwnerName:  cell(row, index[ColOwnerName]),
		Status:     cell(row, index[ColStatus]),
	}

	if rec.PlotSize = parseNumber(cell(row, index[ColPlotSize])); rec.PlotSize == nil {
		quality.UnparsablePlotSizes++
	}

	amount, ok := parseAmount(cell(row, index[ColSoldAmount]))
	rec.SoldAmount = amount
	if !ok && rec.Status == models.StatusSold {
		// A sold plot whose amount zero-filled can masquerade as a free
		// sale; surfaced here instead of being corrected.
		quality.ZeroFilledSoldAmounts++
	}

	if raw := cell(row, index[ColSoldDate]); raw != "" {
		if d, err := time.Parse(SoldDateLayout, raw); err == nil {
			rec.SoldDate = &d
		} else {
			quality.UnparsableSoldDates++
		}
	}

	rec.RawX = parseNumber(cell(row, index[cols.X]))
	rec.RawY = parseNumber(cell(row, index[cols.Y]))
	if rec.RawX == nil || rec.RawY == nil {
		quality.UnparsableCoordinates++
	}

	return rec
}

// cell returns the trimmed value at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber coerces a cell to a finite float, nil on any failure.
func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseAmount coerces a cell to a decimal amount, zero on any failure.
// The second return reports whether the cell parsed.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
