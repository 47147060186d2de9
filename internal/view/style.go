package view

import (
	"math"

	"github.com/stwalsh4118/plotsight/api/internal/models"
)

// Marker sizing defaults, tuned for visibility across zoom levels.
const (
	DefaultLinearDivisor = 40.0
	DefaultMinMarker     = 12.0
	DefaultMaxMarker     = 40.0

	// FallbackMarkerSize is used by the square-root sizer when the set
	// has no size spread to normalize against, or a record has no size.
	FallbackMarkerSize = 30.0
)

// Sizer derives a display marker size for every record in a set. The
// set is passed whole because normalized policies depend on the set's
// min/max, not just the individual record.
type Sizer interface {
	Sizes(records []models.PlotRecord) []float64
}

// LinearSizer scales markers as plot_size / Divisor. No normalization,
// so the absolute plot-size scale shows through. Records without a size
// get a zero marker.
type LinearSizer struct {
	Divisor float64
}

// Sizes implements Sizer.
func (s LinearSizer) Sizes(records []models.PlotRecord) []float64 {
	divisor := s.Divisor
	if divisor <= 0 {
		divisor = DefaultLinearDivisor
	}
	sizes := make([]float64, len(records))
	for i, rec := range records {
		if rec.PlotSize != nil {
			sizes[i] = *rec.PlotSize / divisor
		}
	}
	return sizes
}

// SqrtSizer normalizes plot sizes over the set's [min, max] and maps
// them into [Min, Max] screen sizes with square-root compression, which
// keeps the largest plots from visually dominating. When every size is
// equal (or absent) there is nothing to normalize against and all
// markers fall back to FallbackMarkerSize.
type SqrtSizer struct {
	Min float64
	Max float64
}

// Sizes implements Sizer. The smallest present size maps exactly to Min
// and the largest exactly to Max.
func (s SqrtSizer) Sizes(records []models.PlotRecord) []float64 {
	minMarker, maxMarker := s.Min, s.Max
	if minMarker <= 0 {
		minMarker = DefaultMinMarker
	}
	if maxMarker <= 0 {
		maxMarker = DefaultMaxMarker
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, rec := range records {
		if rec.PlotSize == nil {
			continue
		}
		lo = math.Min(lo, *rec.PlotSize)
		hi = math.Max(hi, *rec.PlotSize)
	}

	sizes := make([]float64, len(records))
	spread := hi - lo
	for i, rec := range records {
		if rec.PlotSize == nil || spread <= 0 {
			sizes[i] = FallbackMarkerSize
			continue
		}
		t := (*rec.PlotSize - lo) / spread
		sizes[i] = minMarker + math.Sqrt(t)*(maxMarker-minMarker)
	}
	return sizes
}

// ResolveColors runs the palette lookup over every record in place,
// falling back to the default gray for owners outside the palette. This
// is the one derived-field pass for colors, executed per dataset load.
func ResolveColors(records []models.PlotRecord, palette map[string]string) {
	for i := range records {
		color, ok := palette[records[i].OwnerName]
		if !ok {
			color = models.DefaultOwnerColor
		}
		records[i].OwnerColor = color
	}
}

// Style turns a (typically filtered) record set into renderable points.
// Coordinates stay nil for records the mapper could not place; the
// renderer decides what to skip, the core hands everything over.
func Style(records []models.PlotRecord, sizer Sizer) []models.StyledPoint {
	sizes := sizer.Sizes(records)
	points := make([]models.StyledPoint, len(records))
	for i, rec := range records {
		points[i] = models.StyledPoint{
			X:          rec.XPlot,
			Y:          rec.YPlot,
			MarkerSize: sizes[i],
			Color:      rec.OwnerColor,
			Sold:       rec.Sold(),
			Tooltip: models.Tooltip{
				PlotNumber: rec.PlotNumber,
				PlotSize:   rec.PlotSize,
				OwnerName:  rec.OwnerName,
				Status:     rec.Status,
				SoldDate:   rec.SoldDate,
				SoldAmount: rec.SoldAmount,
			},
		}
	}
	return points
}
