// Package view computes filtered views, sold summaries, and marker
// styling over a normalized dataset. Everything here is a pure function
// of (records, criteria); no state survives between calls.
package view

import "github.com/stwalsh4118/plotsight/api/internal/models"

// Filter returns the order-preserving subsequence of records matching
// the criteria. A record is kept when all clauses hold:
//
//  1. Date: sold date absent and IncludeUnsold is set, or sold date
//     present and inside the range (inclusive). Absent dates are never
//     excluded by the range itself.
//  2. Owner: owner is in the criteria's owner list. An empty list
//     yields an empty result; there is no "all owners" fallback.
//  3. Size: only when a size range is given. Records with an absent
//     plot size fail the clause.
//
// Filtering is idempotent: re-filtering a result with the same criteria
// returns an equal set.
func Filter(records []models.PlotRecord, criteria models.FilterCriteria) []models.PlotRecord {
	owners := criteria.OwnerSet()

	filtered := make([]models.PlotRecord, 0, len(records))
	for _, rec := range records {
		if !dateClause(rec, criteria) {
			continue
		}
		if _, ok := owners[rec.OwnerName]; !ok {
			continue
		}
		if !sizeClause(rec, criteria.SizeRange) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

func dateClause(rec models.PlotRecord, criteria models.FilterCriteria) bool {
	if rec.SoldDate == nil {
		return criteria.IncludeUnsold
	}
	return criteria.DateRange.Contains(*rec.SoldDate)
}

func sizeClause(rec models.PlotRecord, sr *models.SizeRange) bool {
	if sr == nil {
		return true
	}
	if rec.PlotSize == nil {
		return false
	}
	return sr.Contains(*rec.PlotSize)
}
