package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Known status values. Other values from the sheet pass through as
// opaque strings; only StatusSold carries meaning in the core.
const (
	StatusSold      = "Sold"
	StatusAvailable = "Available"
)

// DefaultOwnerColor is the fallback marker color for owners that are
// missing from a dataset's palette.
const DefaultOwnerColor = "#999999"

// SoldMarkerColor is the overlay color frontends use to cross out sold
// plots. Exposed in the view payload so renderers stay in sync.
const SoldMarkerColor = "#8B0000"

// PlotRecord represents a single land parcel row from the inventory sheet.
// Nullable fields use pointers to distinguish "absent" from zero: an
// unparsable Plot_Size stays nil, while an unparsable Sold_Amount is
// deliberately zero-filled (see ingest package for the coercion table).
type PlotRecord struct {
	PlotNumber string
	PlotSize   *float64
	OwnerName  string
	Status     string
	SoldDate   *time.Time
	SoldAmount decimal.Decimal

	// Raw spatial input, percentage- or pixel-based depending on the
	// dataset's coordinate mode. Nil when the source cell was unparsable.
	RawX *float64
	RawY *float64

	// Canonical plot-space coordinate, populated once by the coordinate
	// mapper. Nil only when the raw input was nil; such records are kept
	// and left for the renderer to skip.
	XPlot *float64
	YPlot *float64

	// OwnerColor is resolved once per dataset load from the palette.
	OwnerColor string
}

// Sold reports whether the record represents a completed sale.
func (r *PlotRecord) Sold() bool {
	return r.Status == StatusSold
}
