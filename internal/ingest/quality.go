package ingest

// Quality is the aggregate data-quality report for one normalized
// dataset. Individual coercion failures never abort or surface on their
// own; they are counted here so callers can expose them in bulk.
type Quality struct {
	// Rows is the normalized record count, always equal to the input
	// row count.
	Rows int `json:"rows"`

	// UnparsablePlotSizes counts rows whose Plot_Size stayed absent.
	UnparsablePlotSizes int `json:"unparsable_plot_sizes"`

	// ZeroFilledSoldAmounts counts Sold rows whose amount zero-filled.
	// These can read as "free" plots in the summary totals, so they are
	// flagged rather than silently absorbed.
	ZeroFilledSoldAmounts int `json:"zero_filled_sold_amounts"`

	// UnparsableSoldDates counts non-empty Sold_Date cells that failed
	// to parse. Empty cells are ordinary unsold rows and not counted.
	UnparsableSoldDates int `json:"unparsable_sold_dates"`

	// UnparsableCoordinates counts rows missing a usable spatial pair;
	// such rows survive normalization but cannot be placed on the map.
	UnparsableCoordinates int `json:"unparsable_coordinates"`

	// SoldMissingDate counts Sold rows without a resolvable sold date.
	// The source does not enforce status/date consistency and neither
	// does the core; the inconsistency is surfaced, not corrected.
	SoldMissingDate int `json:"sold_missing_date"`

	// DuplicatePlotNumbers counts rows repeating an earlier plot number.
	// Duplicates pass through untouched; summary counts include them.
	DuplicatePlotNumbers int `json:"duplicate_plot_numbers"`

	// HasSoldDates is false when no row resolved a sold date, in which
	// case date filtering is meaningless for the dataset.
	HasSoldDates bool `json:"has_sold_dates"`
}
