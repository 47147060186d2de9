package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalRowLabel is the owner label on the trailing summary total row.
const TotalRowLabel = "TOTAL"

// SummaryRow is one line of the sold-summary table: one per selected
// owner (zero-padded when the owner has no sales) plus one total row.
type SummaryRow struct {
	Owner           string          `json:"owner"`
	SoldPlots       int             `json:"sold_plots"`
	TotalSoldAmount decimal.Decimal `json:"total_sold_amount"`
}

// Tooltip carries the hover fields the renderer displays per marker.
// Optional fields stay nil so the frontend can show them as blank
// rather than as fabricated zeroes.
type Tooltip struct {
	PlotNumber string          `json:"plot_number"`
	PlotSize   *float64        `json:"plot_size,omitempty"`
	OwnerName  string          `json:"owner_name"`
	Status     string          `json:"status"`
	SoldDate   *time.Time      `json:"sold_date,omitempty"`
	SoldAmount decimal.Decimal `json:"sold_amount"`
}

// StyledPoint is one renderable marker: canonical coordinates, display
// size and color, and tooltip payload. X and Y are nil for records whose
// raw spatial input was unparsable; the renderer skips those, the core
// never drops them.
type StyledPoint struct {
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	MarkerSize float64  `json:"marker_size"`
	Color      string   `json:"color"`
	Sold       bool     `json:"sold"`
	Tooltip    Tooltip  `json:"tooltip"`
}

// DatasetStats are the header metrics computed over the full dataset,
// independent of any filter.
type DatasetStats struct {
	TotalPlots      int     `json:"total_plots"`
	SoldPlots       int     `json:"sold_plots"`
	AvailablePlots  int     `json:"available_plots"`
	TotalLand       float64 `json:"total_land_sft"`
	SoldLand        float64 `json:"sold_land_sft"`
	RemainingLand   float64 `json:"remaining_land_sft"`
	SoldLandPercent float64 `json:"sold_land_percent"`
}
