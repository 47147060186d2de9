package view

import (
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/plotsight/api/internal/models"
)

// Summarize builds the sold-summary table: one row per selected owner in
// the order given, then exactly one TOTAL row. Only records with
// Status == Sold and an owner in selectedOwners contribute; owners with
// zero sold plots still appear with count 0 and amount 0 (left-join
// semantics, completeness over sparse aggregation). Duplicate plot
// numbers count as separate sales.
func Summarize(records []models.PlotRecord, selectedOwners []string) []models.SummaryRow {
	selected := make(map[string]struct{}, len(selectedOwners))
	for _, owner := range selectedOwners {
		selected[owner] = struct{}{}
	}

	counts := make(map[string]int, len(selectedOwners))
	amounts := make(map[string]decimal.Decimal, len(selectedOwners))
	for _, rec := range records {
		if !rec.Sold() {
			continue
		}
		if _, ok := selected[rec.OwnerName]; !ok {
			continue
		}
		counts[rec.OwnerName]++
		amounts[rec.OwnerName] = amounts[rec.OwnerName].Add(rec.SoldAmount)
	}

	rows := make([]models.SummaryRow, 0, len(selectedOwners)+1)
	totalCount := 0
	totalAmount := decimal.Zero
	for _, owner := range selectedOwners {
		amount := amounts[owner] // zero value is decimal 0
		rows = append(rows, models.SummaryRow{
			Owner:           owner,
			SoldPlots:       counts[owner],
			TotalSoldAmount: amount,
		})
		totalCount += counts[owner]
		totalAmount = totalAmount.Add(amount)
	}

	rows = append(rows, models.SummaryRow{
		Owner:           models.TotalRowLabel,
		SoldPlots:       totalCount,
		TotalSoldAmount: totalAmount,
	})
	return rows
}
