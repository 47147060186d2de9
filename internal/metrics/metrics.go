// Package metrics exposes the service's Prometheus collectors. All
// collectors are registered once on the default registry at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// SheetFetches counts sheet export requests by outcome
	// ("success" or "failure"). Each retry attempt counts separately.
	SheetFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plotsight_sheet_fetches_total",
		Help: "Sheet CSV export requests by outcome.",
	}, []string{"outcome"})

	// DatasetCache counts dataset cache lookups by result
	// ("hit" or "miss").
	DatasetCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plotsight_dataset_cache_lookups_total",
		Help: "Dataset cache lookups by result.",
	}, []string{"dataset", "result"})

	// CoercionDegradations counts non-fatal field coercion failures
	// observed during normalization, labelled by field.
	CoercionDegradations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plotsight_coercion_degradations_total",
		Help: "Field coercion failures that degraded to absent or zero values.",
	}, []string{"dataset", "field"})

	// DatasetLoads counts full dataset load pipelines by outcome
	// ("success", "schema_error", "fetch_error", "asset_error").
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plotsight_dataset_loads_total",
		Help: "Dataset load pipeline executions by outcome.",
	}, []string{"dataset", "outcome"})
)

// Handler returns a gin handler serving the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
