package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stwalsh4118/plotsight/api/internal/assets"
	"github.com/stwalsh4118/plotsight/api/internal/config"
	"github.com/stwalsh4118/plotsight/api/internal/geo"
	"github.com/stwalsh4118/plotsight/api/internal/ingest"
	"github.com/stwalsh4118/plotsight/api/internal/logger"
	"github.com/stwalsh4118/plotsight/api/internal/metrics"
	"github.com/stwalsh4118/plotsight/api/internal/models"
	"github.com/stwalsh4118/plotsight/api/internal/repository"
	"github.com/stwalsh4118/plotsight/api/internal/view"
)

// ErrDatasetNotFound is returned for dataset ids absent from the
// configuration.
var ErrDatasetNotFound = errors.New("dataset not found")

// Bounds is the canonical plot-space extent a dataset renders within.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewParams are the raw, optional filter inputs from a request. Nil
// fields fall back to dataset-derived defaults: the full sold-date
// range, the configured owner roster, and no size clause. A non-nil
// empty owner list stays empty, which filters everything out.
type ViewParams struct {
	Start         *time.Time
	End           *time.Time
	Owners        []string
	MinSize       *float64
	MaxSize       *float64
	IncludeUnsold bool
}

// DatasetView is the full recomputation result for one interaction:
// styled points for the filtered set, the owner-scoped sold summary over
// the whole dataset, header stats, and the data-quality report.
type DatasetView struct {
	DatasetID       string               `json:"dataset_id"`
	Title           string               `json:"title"`
	Bounds          Bounds               `json:"bounds"`
	Points          []models.StyledPoint `json:"points"`
	Summary         []models.SummaryRow  `json:"summary"`
	Stats           models.DatasetStats  `json:"stats"`
	OwnerCounts     map[string]int       `json:"owner_counts"`
	DateBounds      *models.DateRange    `json:"date_bounds,omitempty"`
	SizeBounds      *models.SizeRange    `json:"size_bounds,omitempty"`
	HasSoldDates    bool                 `json:"has_sold_dates"`
	Quality         ingest.Quality       `json:"quality"`
	SoldMarkerColor string               `json:"sold_marker_color"`
}

// DatasetInfo describes one configured dataset for the list endpoint.
// Available is false when the dataset's sheet or image could not be
// loaded; other datasets are unaffected.
type DatasetInfo struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Coordinates  string               `json:"coordinates"`
	Available    bool                 `json:"available"`
	Bounds       Bounds               `json:"bounds,omitempty"`
	Palette      []config.OwnerColor  `json:"palette"`
	OwnerCounts  map[string]int       `json:"owner_counts,omitempty"`
	Stats        *models.DatasetStats `json:"stats,omitempty"`
	DateBounds   *models.DateRange    `json:"date_bounds,omitempty"`
	SizeBounds   *models.SizeRange    `json:"size_bounds,omitempty"`
	HasSoldDates bool                 `json:"has_sold_dates"`
}

// DashboardService defines the interface for dashboard computations.
type DashboardService interface {
	// ListDatasets returns every configured dataset with its metadata.
	// Datasets whose load fails are reported as unavailable, not as an
	// error for the whole list.
	ListDatasets(ctx context.Context) []DatasetInfo

	// View loads (or reuses) the dataset and computes the filtered,
	// styled view plus summary and stats.
	// Returns ErrDatasetNotFound for unknown ids, and propagates
	// repository.ErrSheetUnavailable, *ingest.SchemaError and
	// *assets.MissingAssetError from the load pipeline.
	View(ctx context.Context, id string, params ViewParams) (*DatasetView, error)

	// Summary computes the sold-summary table alone. A nil owners list
	// defaults to the dataset's configured roster.
	Summary(ctx context.Context, id string, owners []string) ([]models.SummaryRow, error)
}

// dataset is one loaded, normalized, mapped, color-resolved dataset.
// Cached copies are treated as read-only by every consumer.
type dataset struct {
	cfg     config.DatasetConfig
	records []models.PlotRecord
	quality ingest.Quality
	bounds  Bounds
}

// dashboardService is the concrete implementation of DashboardService.
type dashboardService struct {
	repo   repository.SheetRepository
	images *assets.ImageStore
	sizer  view.Sizer
	log    *logger.Logger

	configs map[string]config.DatasetConfig
	order   []string
	cache   *expirable.LRU[string, *dataset]
}

// NewDashboardService creates a DashboardService over the configured
// datasets. Loaded datasets are cached for ttl so every interaction
// within that window reuses the same normalized data.
func NewDashboardService(
	repo repository.SheetRepository,
	images *assets.ImageStore,
	datasets []config.DatasetConfig,
	sizer view.Sizer,
	cacheCfg config.CacheConfig,
	log *logger.Logger,
) DashboardService {
	configs := make(map[string]config.DatasetConfig, len(datasets))
	order := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		configs[ds.ID] = ds
		order = append(order, ds.ID)
	}

	return &dashboardService{
		repo:    repo,
		images:  images,
		sizer:   sizer,
		log:     log,
		configs: configs,
		order:   order,
		cache:   expirable.NewLRU[string, *dataset](cacheCfg.MaxEntries, nil, cacheCfg.TTL),
	}
}

// ListDatasets loads every configured dataset and reports its metadata.
func (s *dashboardService) ListDatasets(ctx context.Context) []DatasetInfo {
	infos := make([]DatasetInfo, 0, len(s.order))
	for _, id := range s.order {
		cfg := s.configs[id]
		info := DatasetInfo{
			ID:          cfg.ID,
			Title:       cfg.Title,
			Coordinates: cfg.Coordinates,
			Palette:     cfg.Palette,
		}

		ds, err := s.loadDataset(ctx, id)
		if err != nil {
			s.log.Warn("Dataset unavailable for listing", map[string]interface{}{
				"dataset": id,
				"error":   err.Error(),
			})
			infos = append(infos, info)
			continue
		}

		stats := view.Stats(ds.records)
		info.Available = true
		info.Bounds = ds.bounds
		info.OwnerCounts = view.OwnerCounts(ds.records)
		info.Stats = &stats
		info.DateBounds = view.DateBounds(ds.records)
		info.SizeBounds = view.SizeBounds(ds.records)
		info.HasSoldDates = ds.quality.HasSoldDates
		infos = append(infos, info)
	}
	return infos
}

// View runs one full recomputation pass: filter, style, summarize.
func (s *dashboardService) View(ctx context.Context, id string, params ViewParams) (*DatasetView, error) {
	ds, err := s.loadDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	criteria := s.resolveCriteria(ds, params)

	filtered := view.Filter(ds.records, criteria)
	points := view.Style(filtered, s.sizer)

	// The summary is owner-scoped but independent of the spatial
	// filter: it always aggregates the full dataset.
	summary := view.Summarize(ds.records, criteria.Owners)

	s.log.Info("Computed dataset view", map[string]interface{}{
		"dataset":  id,
		"records":  len(ds.records),
		"filtered": len(filtered),
		"owners":   len(criteria.Owners),
	})

	return &DatasetView{
		DatasetID:       ds.cfg.ID,
		Title:           ds.cfg.Title,
		Bounds:          ds.bounds,
		Points:          points,
		Summary:         summary,
		Stats:           view.Stats(ds.records),
		OwnerCounts:     view.OwnerCounts(ds.records),
		DateBounds:      view.DateBounds(ds.records),
		SizeBounds:      view.SizeBounds(ds.records),
		HasSoldDates:    ds.quality.HasSoldDates,
		Quality:         ds.quality,
		SoldMarkerColor: models.SoldMarkerColor,
	}, nil
}

// Summary computes the sold-summary table for the selected owners.
func (s *dashboardService) Summary(ctx context.Context, id string, owners []string) ([]models.SummaryRow, error) {
	ds, err := s.loadDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if owners == nil {
		owners = ds.cfg.Roster()
	}
	return view.Summarize(ds.records, owners), nil
}

// resolveCriteria fills unset params with dataset-derived defaults.
func (s *dashboardService) resolveCriteria(ds *dataset, params ViewParams) models.FilterCriteria {
	criteria := models.FilterCriteria{IncludeUnsold: params.IncludeUnsold}

	// Date range defaults to the dataset's sold-date bounds. When the
	// dataset has no sold dates at all the range never matters: every
	// record takes the absent-date branch of the date clause.
	if bounds := view.DateBounds(ds.records); bounds != nil {
		criteria.DateRange = *bounds
	}
	if params.Start != nil {
		criteria.DateRange.Start = *params.Start
	}
	if params.End != nil {
		criteria.DateRange.End = *params.End
	}

	if params.Owners != nil {
		criteria.Owners = params.Owners
	} else {
		criteria.Owners = ds.cfg.Roster()
	}

	if params.MinSize != nil || params.MaxSize != nil {
		sr := models.SizeRange{}
		if bounds := view.SizeBounds(ds.records); bounds != nil {
			sr = *bounds
		}
		if params.MinSize != nil {
			sr.Min = *params.MinSize
		}
		if params.MaxSize != nil {
			sr.Max = *params.MaxSize
		}
		criteria.SizeRange = &sr
	}

	return criteria
}

// loadDataset returns the cached dataset or runs the load pipeline:
// fetch, normalize, map coordinates, resolve colors.
func (s *dashboardService) loadDataset(ctx context.Context, id string) (*dataset, error) {
	cfg, ok := s.configs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	if ds, ok := s.cache.Get(id); ok {
		metrics.DatasetCache.WithLabelValues(id, "hit").Inc()
		return ds, nil
	}
	metrics.DatasetCache.WithLabelValues(id, "miss").Inc()

	ds, err := s.buildDataset(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.cache.Add(id, ds)
	return ds, nil
}

// buildDataset executes the load pipeline for one dataset.
func (s *dashboardService) buildDataset(ctx context.Context, cfg config.DatasetConfig) (*dataset, error) {
	csvBytes, err := s.repo.FetchCSV(ctx, cfg.SheetGID)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues(cfg.ID, "fetch_error").Inc()
		return nil, err
	}

	cols := ingest.PercentColumns()
	if cfg.Coordinates == config.CoordsPixel {
		cols = ingest.PixelColumns()
	}

	records, quality, err := ingest.Normalize(bytes.NewReader(csvBytes), cols)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues(cfg.ID, "schema_error").Inc()
		s.log.Error("Sheet normalization failed", err, map[string]interface{}{
			"dataset": cfg.ID,
		})
		return nil, err
	}
	recordCoercionMetrics(cfg.ID, quality)

	mapper, err := s.mapperFor(cfg)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues(cfg.ID, "asset_error").Inc()
		return nil, err
	}

	geo.MapRecords(records, mapper)
	view.ResolveColors(records, cfg.ColorMap())

	width, height := mapper.Bounds()
	ds := &dataset{
		cfg:     cfg,
		records: records,
		quality: quality,
		bounds:  Bounds{Width: width, Height: height},
	}

	metrics.DatasetLoads.WithLabelValues(cfg.ID, "success").Inc()
	s.log.Info("Dataset loaded", map[string]interface{}{
		"dataset":        cfg.ID,
		"rows":           quality.Rows,
		"has_sold_dates": quality.HasSoldDates,
		"duplicates":     quality.DuplicatePlotNumbers,
	})
	if !quality.HasSoldDates {
		s.log.Warn("No records have a resolvable sold date; date filtering is inert", map[string]interface{}{
			"dataset": cfg.ID,
		})
	}

	return ds, nil
}

// mapperFor builds the coordinate mapper the dataset's config declares.
func (s *dashboardService) mapperFor(cfg config.DatasetConfig) (geo.Mapper, error) {
	switch cfg.Coordinates {
	case config.CoordsPixel:
		dims, err := s.images.Dimensions(cfg.Image)
		if err != nil {
			return nil, err
		}
		return geo.PixelMapper{
			ImageWidth:  float64(dims.Width),
			ImageHeight: float64(dims.Height),
		}, nil
	default:
		return geo.NewPercentMapper(cfg.WidthScale, cfg.Stretch), nil
	}
}

// recordCoercionMetrics feeds the quality counters into Prometheus.
func recordCoercionMetrics(id string, q ingest.Quality) {
	metrics.CoercionDegradations.WithLabelValues(id, "plot_size").Add(float64(q.UnparsablePlotSizes))
	metrics.CoercionDegradations.WithLabelValues(id, "sold_amount").Add(float64(q.ZeroFilledSoldAmounts))
	metrics.CoercionDegradations.WithLabelValues(id, "sold_date").Add(float64(q.UnparsableSoldDates))
	metrics.CoercionDegradations.WithLabelValues(id, "coordinates").Add(float64(q.UnparsableCoordinates))
}
