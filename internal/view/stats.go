package view

import "github.com/stwalsh4118/plotsight/api/internal/models"

// Stats computes the header metrics over the full dataset. Records with
// an absent plot size contribute to the counts but not to the land
// areas. The sold percentage is 0 when no land area is known.
func Stats(records []models.PlotRecord) models.DatasetStats {
	stats := models.DatasetStats{TotalPlots: len(records)}
	for _, rec := range records {
		sold := rec.Sold()
		if sold {
			stats.SoldPlots++
		}
		if rec.PlotSize == nil {
			continue
		}
		stats.TotalLand += *rec.PlotSize
		if sold {
			stats.SoldLand += *rec.PlotSize
		}
	}
	stats.AvailablePlots = stats.TotalPlots - stats.SoldPlots
	stats.RemainingLand = stats.TotalLand - stats.SoldLand
	if stats.TotalLand > 0 {
		stats.SoldLandPercent = stats.SoldLand / stats.TotalLand * 100
	}
	return stats
}

// DateBounds returns the earliest and latest resolvable sold dates, or
// nil when no record carries one. Frontends seed their date slider from
// these bounds.
func DateBounds(records []models.PlotRecord) *models.DateRange {
	var bounds *models.DateRange
	for _, rec := range records {
		if rec.SoldDate == nil {
			continue
		}
		d := *rec.SoldDate
		if bounds == nil {
			bounds = &models.DateRange{Start: d, End: d}
			continue
		}
		if d.Before(bounds.Start) {
			bounds.Start = d
		}
		if d.After(bounds.End) {
			bounds.End = d
		}
	}
	return bounds
}

// SizeBounds returns the smallest and largest present plot sizes, or
// nil when no record carries one. Frontends seed their size slider from
// these bounds.
func SizeBounds(records []models.PlotRecord) *models.SizeRange {
	var bounds *models.SizeRange
	for _, rec := range records {
		if rec.PlotSize == nil {
			continue
		}
		size := *rec.PlotSize
		if bounds == nil {
			bounds = &models.SizeRange{Min: size, Max: size}
			continue
		}
		if size < bounds.Min {
			bounds.Min = size
		}
		if size > bounds.Max {
			bounds.Max = size
		}
	}
	return bounds
}

// OwnerCounts tallies records per owner over the full dataset, used for
// the legend's "(n)" badges.
func OwnerCounts(records []models.PlotRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.OwnerName]++
	}
	return counts
}
