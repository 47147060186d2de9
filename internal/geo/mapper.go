// Package geo maps raw spatial fields onto the canonical plot space the
// renderer draws against a background layout image.
package geo

import "github.com/stwalsh4118/plotsight/api/internal/models"

// Default percentage-mapping parameters. The width scale compensates for
// the reference sheet's coordinate grid being wider than the canonical
// space (3742/4425); the stretch corrects the layout image's non-square
// aspect ratio.
const (
	DefaultWidthScale = 3742.0 / 4425.0
	DefaultStretch    = 1.75
)

// Mapper transforms one raw spatial pair into canonical plot-space
// coordinates. Absent inputs propagate as nil outputs; a mapper never
// drops or invents a coordinate. Which strategy applies is decided by
// the dataset configuration, never inferred from the data.
type Mapper interface {
	// Map transforms a single raw coordinate pair.
	Map(x, y *float64) (px, py *float64)
	// Bounds returns the canonical plot-space extent (width, height)
	// the renderer should use for its axes.
	Bounds() (width, height float64)
}

// PercentMapper rescales percentage coordinates: x by WidthScale, y by
// the vertical Stretch factor. Output ranges are [0,100] for x and
// [0, 100*Stretch] for y.
type PercentMapper struct {
	WidthScale float64
	Stretch    float64
}

// NewPercentMapper builds a PercentMapper, substituting the package
// defaults for non-positive parameters.
func NewPercentMapper(widthScale, stretch float64) PercentMapper {
	if widthScale <= 0 {
		widthScale = DefaultWidthScale
	}
	if stretch <= 0 {
		stretch = DefaultStretch
	}
	return PercentMapper{WidthScale: widthScale, Stretch: stretch}
}

// Map rescales a percentage pair into plot space.
func (m PercentMapper) Map(x, y *float64) (*float64, *float64) {
	var px, py *float64
	if x != nil {
		v := *x * m.WidthScale
		px = &v
	}
	if y != nil {
		v := *y * m.Stretch
		py = &v
	}
	return px, py
}

// Bounds returns the stretched percentage extent.
func (m PercentMapper) Bounds() (float64, float64) {
	return 100, 100 * m.Stretch
}

// PixelMapper converts image-pixel coordinates to plot space: x passes
// through, y flips against the image height so the origin moves from the
// image's top-left to the plot's bottom-left.
type PixelMapper struct {
	ImageWidth  float64
	ImageHeight float64
}

// Map flips the vertical axis against the image height.
func (m PixelMapper) Map(x, y *float64) (*float64, *float64) {
	var px, py *float64
	if x != nil {
		v := *x
		px = &v
	}
	if y != nil {
		v := m.ImageHeight - *y
		py = &v
	}
	return px, py
}

// Bounds returns the image extent in pixels.
func (m PixelMapper) Bounds() (float64, float64) {
	return m.ImageWidth, m.ImageHeight
}

// MapRecords runs the mapper over every record in place. This is the
// one derived-field pass for coordinates; records are read-only after.
func MapRecords(records []models.PlotRecord, m Mapper) {
	for i := range records {
		records[i].XPlot, records[i].YPlot = m.Map(records[i].RawX, records[i].RawY)
	}
}
